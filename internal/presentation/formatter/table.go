package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

const minColumnWidth = 5

type TableFormatter struct {
	opts Options
}

func NewTableFormatter(opts Options) *TableFormatter {
	return &TableFormatter{opts: opts.withDefaults()}
}

func (f *TableFormatter) Format(w io.Writer, tl *timeline.Timeline) error {
	if tl.Empty() {
		_, err := fmt.Fprintln(w, "No events")
		return err
	}

	keys := attributeKeys(tl)
	headers := append([]string{"At", "Date", "Until"}, keys...)

	rows := make([][]string, 0, tl.Len())
	for _, e := range tl.Events() {
		row := make([]string, 0, len(headers))
		row = append(row,
			fmt.Sprintf("%d", e.At()),
			f.opts.Clock.FormatTimestampWithZone(e.At(), f.opts.Zone),
			untilValue(e),
		)
		for _, key := range keys {
			row = append(row, cellValue(e, key))
		}
		rows = append(rows, row)
	}

	total := make([]string, len(headers))
	total[0] = "Total"
	total[1] = eventCount(tl.Len())

	widths := calculateColumnWidths(headers, rows, total)

	var b strings.Builder
	printBorder(&b, widths, "top")
	printRow(&b, headers, widths)
	printBorder(&b, widths, "middle")
	for _, row := range rows {
		printRow(&b, row, widths)
	}
	printBorder(&b, widths, "middle")
	printRow(&b, total, widths)
	printBorder(&b, widths, "bottom")

	_, err := io.WriteString(w, b.String())
	return err
}

func eventCount(n int) string {
	if n == 1 {
		return "1 event"
	}
	return fmt.Sprintf("%s events", formatNumber(n))
}

// calculateColumnWidths sizes each column to its widest cell
func calculateColumnWidths(headers []string, rows [][]string, total []string) []int {
	widths := make([]int, len(headers))
	measure := func(values []string) {
		for i, value := range values {
			if width := util.GetDisplayWidth(value); width > widths[i] {
				widths[i] = width
			}
		}
	}

	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	measure(total)

	for i := range widths {
		widths[i] = max(widths[i], minColumnWidth)
	}
	return widths
}

// printBorder writes a table border (top, middle, bottom)
func printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

// printRow writes a row; the timestamp columns are right-aligned
func printRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		if (i == 0 || i == 2) && isDigits(value) {
			b.WriteString(padLeft(value, widths[i]))
		} else {
			b.WriteString(util.PadRight(value, widths[i]))
		}
		b.WriteString(" │")
	}
	b.WriteString("\n")
}

func padLeft(text string, width int) string {
	actual := util.GetDisplayWidth(text)
	if actual >= width {
		return text
	}
	return strings.Repeat(" ", width-actual) + text
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}

	return string(result)
}
