package timeline

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/util"
)

// ErrTitleCountMismatch is returned when titles and timelines differ in number
var ErrTitleCountMismatch = errors.New("titles must be as many as the timelines")

const (
	DefaultRenderWidth = 80
	DefaultRenderZone  = "UTC"
	columnSeparator    = " | "
)

type renderConfig struct {
	width int
	zone  string
	clock util.Clock
}

// RenderOption configures Format and Fprint
type RenderOption func(*renderConfig)

// RenderWidth sets the column width, values below 1 mean the default
func RenderWidth(width int) RenderOption {
	return func(c *renderConfig) {
		if width > 0 {
			c.width = width
		}
	}
}

// RenderZone sets the timezone of the dates in the timestamp headers
func RenderZone(zone string) RenderOption {
	return func(c *renderConfig) {
		if zone != "" {
			c.zone = zone
		}
	}
}

// RenderClock sets the clock formatting the timestamp headers
func RenderClock(clock util.Clock) RenderOption {
	return func(c *renderConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Format renders timelines side by side, one column per timeline, one block
// per distinct anchor across all of them in ascending order. No titles
// means blank titles.
func Format(timelines []*Timeline, titles []string, opts ...RenderOption) (string, error) {
	config := &renderConfig{width: DefaultRenderWidth, zone: DefaultRenderZone}
	for _, opt := range opts {
		opt(config)
	}
	if config.clock == nil {
		config.clock = util.GetTimeProvider()
	}

	if len(titles) == 0 {
		titles = make([]string, len(timelines))
	}
	if len(titles) != len(timelines) {
		return "", fmt.Errorf("%w: %d titles for %d timelines", ErrTitleCountMismatch, len(titles), len(timelines))
	}

	width := config.width
	separator := strings.Repeat("-", max(len(timelines)*width/2-10, 0))
	blank := strings.Repeat(" ", width)

	var sb strings.Builder
	sb.WriteString("\n")
	centered := make([]string, len(titles))
	for i, title := range titles {
		centered[i] = util.CenterText(title, width)
	}
	sb.WriteString(strings.Join(centered, columnSeparator))

	for _, ts := range allTimestamps(timelines) {
		columns := make([][]string, len(timelines))
		rows := 0
		for i, tl := range timelines {
			e := tl.EventAt(ts, nil)
			if e == nil {
				continue
			}
			lines, err := formatEvent(e, width)
			if err != nil {
				return "", err
			}
			for j := range lines {
				lines[j] = util.PadRight(lines[j], width)
			}
			columns[i] = lines
			rows = max(rows, len(lines))
		}

		date := config.clock.FormatTimestampWithZone(ts, config.zone)
		fmt.Fprintf(&sb, "\n%s %d %s %s\n", separator, ts, date, separator)

		line := make([]string, len(columns))
		for row := 0; row < rows; row++ {
			for i, column := range columns {
				if row < len(column) {
					line[i] = column[row]
				} else {
					line[i] = blank
				}
			}
			sb.WriteString(strings.Join(line, columnSeparator))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// Fprint writes the rendering of Format to w
func Fprint(w io.Writer, timelines []*Timeline, titles []string, opts ...RenderOption) error {
	out, err := Format(timelines, titles, opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func allTimestamps(timelines []*Timeline) []int64 {
	seen := make(map[int64]struct{})
	var result []int64
	for _, tl := range timelines {
		for _, ts := range tl.Timestamps() {
			if _, ok := seen[ts]; ok {
				continue
			}
			seen[ts] = struct{}{}
			result = append(result, ts)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// formatEvent renders the structured form of e with sorted keys, on one line
// when it fits width, one key per line otherwise
func formatEvent(e *event.Event, width int) ([]string, error) {
	fields := e.AsStructured(true)
	keys := fields.SortedKeys()

	items := make([]string, len(keys))
	for i, key := range keys {
		value, _ := fields.Get(key)
		encodedKey, err := sonic.ConfigStd.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := sonic.ConfigStd.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to render attribute %q: %w", key, err)
		}
		items[i] = string(encodedKey) + ": " + string(encodedValue)
	}

	single := "{" + strings.Join(items, ", ") + "}"
	if len(items) <= 1 || util.GetDisplayWidth(single) <= width {
		return []string{single}, nil
	}

	lines := make([]string, len(items))
	for i, item := range items {
		switch {
		case i == 0:
			lines[i] = "{" + item + ","
		case i == len(items)-1:
			lines[i] = " " + item + "}"
		default:
			lines[i] = " " + item + ","
		}
	}
	return lines, nil
}
