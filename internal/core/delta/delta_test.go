package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
)

func TestChanges(t *testing.T) {
	prev := event.New(1, event.NewAttributes().
		With("status", "created").
		With("count", 1).
		With("removed", true).
		With("tags", []any{"a"}))
	next := event.New(2, event.NewAttributes().
		With("status", "updated").
		With("count", int64(1)).
		With("tags", []any{"a"}).
		With("added", "x"))

	changes := Changes(prev, next)
	assert.Equal(t, []string{"status", "removed", "added"}, changes.Keys())

	status, err := changes.GetMap("status")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{KeyFrom: "created", KeyTo: "updated"}, status)

	removed, err := changes.GetMap("removed")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{KeyFrom: true, KeyTo: nil}, removed)

	added, err := changes.GetMap("added")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{KeyFrom: nil, KeyTo: "x"}, added)
}

func TestChangesIdentical(t *testing.T) {
	e := event.New(1, event.NewAttributes().With("k", "v"))
	assert.Equal(t, 0, Changes(e, e.Clone()).Len())
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		name string
		prev *event.Attributes
		next *event.Attributes
		want map[string]any
	}{
		{
			name: "integers",
			prev: event.NewAttributes().With("count", 3),
			next: event.NewAttributes().With("count", 10),
			want: map[string]any{"count": int64(7)},
		},
		{
			name: "floats",
			prev: event.NewAttributes().With("ratio", 0.5),
			next: event.NewAttributes().With("ratio", 0.75),
			want: map[string]any{"ratio": 0.25},
		},
		{
			name: "mixed",
			prev: event.NewAttributes().With("count", 1),
			next: event.NewAttributes().With("count", 2.5),
			want: map[string]any{"count": 1.5},
		},
		{
			name: "skips missing and non numeric",
			prev: event.NewAttributes().With("count", 1).With("name", "a"),
			next: event.NewAttributes().With("name", "b"),
			want: map[string]any{},
		},
	}

	fn := Numeric("count", "ratio", "name")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fn(event.New(1, tt.prev), event.New(2, tt.next))
			assert.Equal(t, tt.want, got.ToMap())
		})
	}
}

func TestNumericWithTimeline(t *testing.T) {
	tl := timeline.New()
	for i, n := range []int{1, 4, 9} {
		require.NoError(t, tl.Append(event.New(int64(i), event.NewAttributes().With("n", n))))
	}

	deltas := tl.Deltas(Numeric("n"))
	require.Equal(t, 2, deltas.Len())
	assert.Equal(t, []int64{1, 2}, deltas.Timestamps())
	last, _ := deltas.LastEvent()
	value, err := last.Attributes().GetInt64("n")
	require.NoError(t, err)
	assert.Equal(t, int64(5), value)
}
