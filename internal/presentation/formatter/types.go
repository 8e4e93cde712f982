package formatter

import (
	"fmt"
	"io"
	"sort"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

// Formatter writes a timeline in some output format
type Formatter interface {
	Format(w io.Writer, tl *timeline.Timeline) error
}

// Options shared by the formatters printing dates
type Options struct {
	Clock util.Clock
	Zone  string
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = util.GetTimeProvider()
	}
	if o.Zone == "" {
		o.Zone = "UTC"
	}
	return o
}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	case "table":
		return NewTableFormatter(opts), nil
	case "summary", "":
		return NewSummaryFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (valid: summary, table, json, csv)", name)
	}
}

// attributeKeys returns the sorted union of the attribute names
func attributeKeys(tl *timeline.Timeline) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, e := range tl.Events() {
		for _, key := range e.Attributes().Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// cellValue renders an attribute for a cell: strings raw, other values as JSON
func cellValue(e *event.Event, key string) string {
	value, ok := e.Attributes().Get(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}

func untilValue(e *event.Event) string {
	if until, ok := e.Until(); ok {
		return fmt.Sprintf("%d", until)
	}
	return ""
}
