package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/core/delta"
	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeframe"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/data/loader"
	"github.com/penwyp/go-timeline/internal/util"
)

func orders(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New()
	steps := []struct {
		at     int64
		status string
		count  int
	}{
		{30, "shipped", 3},
		{10, "created", 1},
		{20, "paid", 2},
		{20, "paid", 2},
		{40, "shipped", 7},
	}
	for _, s := range steps {
		attrs := event.NewAttributes().With("status", s.status).With("count", s.count).With("window", []any{s.at * 10, s.at*10 + 5})
		require.NoError(t, tl.Append(event.New(s.at, attrs)))
	}
	return tl
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "empty", config: Config{}},
		{name: "changes", config: Config{Deltas: DeltaChanges}},
		{name: "numeric", config: Config{Deltas: DeltaNumeric, DeltaKeys: []string{"count"}}},
		{name: "numeric without keys", config: Config{Deltas: DeltaNumeric}, wantErr: true},
		{name: "unknown mode", config: Config{Deltas: "ratio"}, wantErr: true},
		{name: "negative trim", config: Config{Trim: -1}, wantErr: true},
		{name: "negative since", config: Config{Since: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tt.config.Clock)
		})
	}
}

func TestApplyEmptyConfigCopies(t *testing.T) {
	tl := orders(t)
	p, err := New(Config{})
	require.NoError(t, err)

	result, err := p.Apply(tl)
	require.NoError(t, err)
	assert.True(t, result.Equal(tl))
	assert.NotSame(t, tl, result)
}

func TestApplySelection(t *testing.T) {
	tl := orders(t)
	window := timeframe.Must[int64](15, 35)

	tests := []struct {
		name   string
		config Config
		want   []int64
	}{
		{name: "where", config: Config{Where: map[string]any{"status": "shipped"}}, want: []int64{30, 40}},
		{name: "where numeric", config: Config{Where: map[string]any{"count": 2.0}}, want: []int64{20, 20}},
		{name: "window", config: Config{Window: &window}, want: []int64{30, 20, 20}},
		{name: "since", config: Config{Since: 25 * time.Second, Clock: util.NewFixedClock(50)}, want: []int64{30, 40}},
		{name: "dedupe and sort", config: Config{Dedupe: true, Sort: true}, want: []int64{10, 20, 30, 40}},
		{name: "sort reverse", config: Config{Sort: true, Reverse: true}, want: []int64{40, 30, 20, 20, 10}},
		{name: "trim", config: Config{Trim: 2}, want: []int64{20, 40}},
		{name: "last", config: Config{Sort: true, Last: map[string]any{"status": "shipped"}}, want: []int64{30, 40}},
		{name: "project", config: Config{Project: "window", Trim: 1}, want: []int64{400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.config)
			require.NoError(t, err)
			result, err := p.Apply(tl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Timestamps())
		})
	}
	assert.Equal(t, 5, tl.Len())
}

func TestApplyDeltas(t *testing.T) {
	tl := orders(t)

	p, err := New(Config{Sort: true, Dedupe: true, Deltas: DeltaNumeric, DeltaKeys: []string{"count"}})
	require.NoError(t, err)
	result, err := p.Apply(tl)
	require.NoError(t, err)
	require.Equal(t, 3, result.Len())

	var counts []int64
	for _, e := range result.Events() {
		n, err := e.Attributes().GetInt64("count")
		require.NoError(t, err)
		counts = append(counts, n)
	}
	assert.Equal(t, []int64{1, 1, 4}, counts)

	p, err = New(Config{Sort: true, Dedupe: true, Deltas: DeltaChanges})
	require.NoError(t, err)
	result, err = p.Apply(tl)
	require.NoError(t, err)
	first, _ := result.FirstEvent()
	status, err := first.Attributes().GetMap("status")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{delta.KeyFrom: "created", delta.KeyTo: "paid"}, status)
}

func TestApplyProjectError(t *testing.T) {
	p, err := New(Config{Project: "missing"})
	require.NoError(t, err)
	_, err = p.Apply(orders(t))
	assert.ErrorIs(t, err, event.ErrKeyNotFound)
}

func TestParseAssignments(t *testing.T) {
	values, err := ParseAssignments([]string{"status=shipped", "count=2", "ok=true", "tags=[\"a\"]", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"status": "shipped",
		"count":  float64(2),
		"ok":     true,
		"tags":   []any{"a"},
		"empty":  "",
	}, values)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = ParseAssignments([]string{"=x"})
	assert.Error(t, err)

	none, err := ParseAssignments(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRefreshController(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"_at": 2}, {"_at": 1}]`), 0644))

	sorted, err := New(Config{Sort: true})
	require.NoError(t, err)
	rc := NewRefreshController(loader.NewLoader(2), []Source{
		{Title: "raw", Path: path},
		{Title: "sorted", Path: path, Pipeline: sorted},
	})
	assert.Equal(t, []string{"raw", "sorted"}, rc.Titles())

	timelines, err := rc.Refresh()
	require.NoError(t, err)
	require.Len(t, timelines, 2)
	assert.Equal(t, []int64{2, 1}, timelines[0].Timestamps())
	assert.Equal(t, []int64{1, 2}, timelines[1].Timestamps())

	require.NoError(t, os.WriteFile(path, []byte(`[{"_at": 3}]`), 0644))
	timelines, err = rc.Refresh(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, timelines[0].Timestamps())

	require.NoError(t, os.Remove(path))
	_, err = rc.Refresh(path)
	assert.Error(t, err)
}
