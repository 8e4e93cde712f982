package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

// SummaryFormatter writes a short report about a timeline
type SummaryFormatter struct {
	opts Options
}

func NewSummaryFormatter(opts Options) *SummaryFormatter {
	return &SummaryFormatter{opts: opts.withDefaults()}
}

func (f *SummaryFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	frame, err := tl.Timeframe()
	if err != nil {
		return err
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Timeline Summary Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Kind: %s\n", tl.Kind().Name())
	fmt.Fprintf(&b, "Events: %s\n", formatNumber(tl.Len()))
	fmt.Fprintln(&b)

	if frame == nil {
		fmt.Fprintln(&b, "No events to summarize")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, rule)
		_, err := io.WriteString(w, b.String())
		return err
	}

	first := f.opts.Clock.FormatTimestampWithZone(frame.From(), f.opts.Zone)
	last := f.opts.Clock.FormatTimestampWithZone(frame.To(), f.opts.Zone)
	if first == last {
		fmt.Fprintf(&b, "Date Range: %s\n", first)
	} else {
		fmt.Fprintf(&b, "Date Range: %s to %s\n", first, last)
	}
	fmt.Fprintf(&b, "Timeframe: %s\n", frame)
	if frame.IsMomentary() {
		fmt.Fprintln(&b, "Span: momentary")
	} else {
		seconds := frame.To() - frame.From()
		rounded := util.FormatDurationRounded(seconds)
		if exact := util.FormatDuration(time.Duration(seconds) * time.Second); exact != rounded {
			fmt.Fprintf(&b, "Span: about %s (%s)\n", rounded, exact)
		} else {
			fmt.Fprintf(&b, "Span: %s\n", rounded)
		}
	}
	if lastEvent, ok := tl.LastEvent(); ok {
		fmt.Fprintf(&b, "Last Event: %s\n", util.FormatSince(f.opts.Clock, lastEvent.At()))
	}
	fmt.Fprintln(&b)

	counts := make(map[string]int)
	for _, e := range tl.Events() {
		for _, key := range e.Attributes().Keys() {
			counts[key]++
		}
	}
	if len(counts) > 0 {
		fmt.Fprintln(&b, "Attributes:")
		fmt.Fprintln(&b, strings.Repeat("-", 60))

		keys := make([]string, 0, len(counts))
		for key := range counts {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			fmt.Fprintf(&b, "  %-20s %s\n", key+":", formatNumber(counts[key]))
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, rule)
	_, err = io.WriteString(w, b.String())
	return err
}
