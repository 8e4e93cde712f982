package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/application/pipeline"
	"github.com/penwyp/go-timeline/internal/core/timeframe"
)

func TestParse(t *testing.T) {
	content := `
width    = 60
timezone = "Asia/Shanghai"

timeline "orders" {
  source     = "orders.jsonl"
  sort       = true
  dedupe     = true
  where      = { status = "shipped", count = 2, nested = { ok = true } }
  from       = ts("2014-08-21T13:46:00Z")
  until      = 1408628800
  deltas     = "numeric"
  delta_keys = ["count"]
  trim       = 10
}

timeline "audit" {
  source  = "/var/data/audit.json"
  reverse = true
  since   = "24h"
  project = "window"
  last    = { level = "info", ratio = 0.5 }
}
`
	r, err := Parse([]byte(content), "report.hcl")
	require.NoError(t, err)

	assert.Equal(t, 60, r.Width)
	assert.Equal(t, "Asia/Shanghai", r.Timezone)
	require.Len(t, r.Timelines, 2)
	assert.Equal(t, []string{"orders", "audit"}, r.Titles())

	orders := r.Timelines[0]
	assert.Equal(t, "orders.jsonl", orders.Source)
	assert.True(t, orders.Pipeline.Sort)
	assert.True(t, orders.Pipeline.Dedupe)
	assert.False(t, orders.Pipeline.Reverse)
	assert.Equal(t, map[string]any{
		"status": "shipped",
		"count":  int64(2),
		"nested": map[string]any{"ok": true},
	}, orders.Pipeline.Where)
	require.NotNil(t, orders.Pipeline.Window)
	assert.Equal(t, timeframe.Must[int64](1408628760, 1408628800), *orders.Pipeline.Window)
	assert.Equal(t, pipeline.DeltaNumeric, orders.Pipeline.Deltas)
	assert.Equal(t, []string{"count"}, orders.Pipeline.DeltaKeys)
	assert.Equal(t, 10, orders.Pipeline.Trim)

	audit := r.Timelines[1]
	assert.True(t, audit.Pipeline.Reverse)
	assert.Equal(t, 24*time.Hour, audit.Pipeline.Since)
	assert.Equal(t, "window", audit.Pipeline.Project)
	assert.Equal(t, map[string]any{"level": "info", "ratio": 0.5}, audit.Pipeline.Last)
	assert.Nil(t, audit.Pipeline.Where)
	assert.Nil(t, audit.Pipeline.Window)
}

func TestParseDefaults(t *testing.T) {
	r, err := Parse([]byte(`timeline "only" { source = "a.json" }`), "report.hcl")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Width)
	assert.Equal(t, "", r.Timezone)
	assert.NotNil(t, r.Timelines[0].Pipeline.Clock)
}

func TestParseOpenEndedWindow(t *testing.T) {
	r, err := Parse([]byte(block(`until = 5`)), "report.hcl")
	require.NoError(t, err)
	window := r.Timelines[0].Pipeline.Window
	require.NotNil(t, window)
	assert.Equal(t, int64(math.MinInt64), window.From())
	assert.Equal(t, int64(5), window.To())

	r, err = Parse([]byte(block(`from = -5`)), "report.hcl")
	require.NoError(t, err)
	window = r.Timelines[0].Pipeline.Window
	require.NotNil(t, window)
	assert.Equal(t, int64(-5), window.From())
	assert.Equal(t, int64(math.MaxInt64), window.To())
}

func block(attrs ...string) string {
	return "timeline \"a\" {\n  source = \"a\"\n  " + strings.Join(attrs, "\n  ") + "\n}\n"
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: `timeline "a" {`},
		{name: "no timelines", content: `width = 10`},
		{name: "missing source", content: `timeline "a" {}`},
		{name: "unknown attribute", content: block(`color = "red"`)},
		{name: "bad delta mode", content: block(`deltas = "ratio"`)},
		{name: "numeric without keys", content: block(`deltas = "numeric"`)},
		{name: "bad since", content: block(`since = "soon"`)},
		{name: "bad date", content: block(`from = ts("yesterday")`)},
		{name: "inverted window", content: block(`from = 10`, `until = 5`)},
		{name: "where not an object", content: block(`where = "x"`)},
		{name: "negative width", content: "width = -1\n" + block()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "report.hcl")
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(block(`trim = 3`)), "report.hcl")
	assert.NoError(t, err)
}

func TestLoadResolvesSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.hcl")
	content := `
timeline "relative" { source = "data/a.json" }
timeline "absolute" { source = "/tmp/b.json" }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "a.json"), r.Timelines[0].Source)
	assert.Equal(t, "/tmp/b.json", r.Timelines[1].Source)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}
