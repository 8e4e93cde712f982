package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

func sample(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New()
	require.NoError(t, tl.Append(event.New(1408628762, event.NewAttributes().With("body", "created").With("n", 1))))
	require.NoError(t, tl.Append(event.New(1408628778, event.NewAttributes().
		With("body", "done").
		With("tags", []any{"a", "b"}), event.WithUntil(1408628779))))
	return tl
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    any
		wantErr bool
	}{
		{name: "json", want: &JSONFormatter{}},
		{name: "csv", want: &CSVFormatter{}},
		{name: "table", want: &TableFormatter{}},
		{name: "summary", want: &SummaryFormatter{}},
		{name: "", want: &SummaryFormatter{}},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.name, Options{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	tl := sample(t)

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, tl))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n"))
	assert.True(t, strings.HasSuffix(buf.String(), "]\n"))

	restored, err := timeline.FromJSON(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, tl.Equal(restored))
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, sample(t)))

	want := "_at,_until,body,n,tags\n" +
		"1408628762,,created,1,\n" +
		"1408628778,1408628779,done,,\"[\"\"a\"\",\"\"b\"\"]\"\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter().Format(&buf, timeline.New()))
	assert.Equal(t, "_at,_until\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	tl := timeline.New()
	require.NoError(t, tl.Append(event.New(10, event.NewAttributes().With("body", "created"))))

	var buf bytes.Buffer
	f := NewTableFormatter(Options{Clock: util.NewFixedClock(0), Zone: "UTC"})
	require.NoError(t, f.Format(&buf, tl))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "┌"+strings.Repeat("─", 7)+"┬"+strings.Repeat("─", 14)+"┬"+strings.Repeat("─", 7)+"┬"+strings.Repeat("─", 9)+"┐", lines[0])
	assert.Equal(t, "│ At    │ Date         │ Until │ body    │", lines[1])
	assert.Equal(t, "│    10 │ 01 Jan 00:00 │       │ created │", lines[3])
	assert.Equal(t, "│ Total │ 1 event      │       │         │", lines[5])
	assert.True(t, strings.HasPrefix(lines[6], "└"))
}

func TestTableFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).Format(&buf, timeline.New()))
	assert.Equal(t, "No events\n", buf.String())
}

func TestSummaryFormatter(t *testing.T) {
	tl := timeline.New()
	require.NoError(t, tl.Append(event.New(1408628762, event.NewAttributes().With("body", "created"))))
	require.NoError(t, tl.Append(event.New(1408628778, event.NewAttributes().With("body", "done").With("n", 2))))

	var buf bytes.Buffer
	f := NewSummaryFormatter(Options{Clock: util.NewFixedClock(1408628780)})
	require.NoError(t, f.Format(&buf, tl))

	out := buf.String()
	assert.Contains(t, out, "Timeline Summary Report")
	assert.Contains(t, out, "Kind: event\n")
	assert.Contains(t, out, "Events: 2\n")
	assert.Contains(t, out, "Date Range: 21 Aug 13:46\n")
	assert.Contains(t, out, "Timeframe: Timeframe(1408628762, 1408628778)\n")
	assert.Contains(t, out, "Span: 16 seconds\n")
	assert.Contains(t, out, "Last Event: about 2 seconds ago\n")
	assert.Contains(t, out, fmt.Sprintf("  %-20s %s\n", "body:", "2"))
	assert.Contains(t, out, fmt.Sprintf("  %-20s %s\n", "n:", "1"))
}

func TestSummaryFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(Options{}).Format(&buf, timeline.New()))
	assert.Contains(t, buf.String(), "No events to summarize")
	assert.NotContains(t, buf.String(), "Date Range")
}

func TestSummaryFormatterInvalidTimeframe(t *testing.T) {
	tl := timeline.New()
	require.NoError(t, tl.Append(event.New(10, nil, event.WithUntil(5))))

	var buf bytes.Buffer
	assert.Error(t, NewSummaryFormatter(Options{}).Format(&buf, tl))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestSummaryFormatterRoundedSpan(t *testing.T) {
	tl := timeline.New()
	require.NoError(t, tl.Append(event.New(0, nil, event.WithUntil(13930))))

	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(Options{Clock: util.NewFixedClock(13930)}).Format(&buf, tl))
	assert.Contains(t, buf.String(), "Span: about 4 hours (3 hours, 52 minutes, 10 seconds)\n")
	assert.NotContains(t, buf.String(), "Attributes:")
}
