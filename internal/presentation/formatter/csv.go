package formatter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format writes one row per event: the timestamps, then every attribute
// seen in the timeline in lexical order
func (f *CSVFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	cw := csv.NewWriter(w)

	keys := attributeKeys(tl)
	headers := append([]string{event.KeyAt, event.KeyUntil}, keys...)
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, e := range tl.Events() {
		record := make([]string, 0, len(headers))
		record = append(record, fmt.Sprintf("%d", e.At()), untilValue(e))
		for _, key := range keys {
			record = append(record, cellValue(e, key))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
