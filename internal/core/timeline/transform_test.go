package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/util"
)

func TestFilter(t *testing.T) {
	tl := threeSteps(t)
	filtered := tl.Filter(func(e *event.Event) bool {
		return e.At() != 1408628769
	})

	assert.Equal(t, []int64{1408628762, 1408628778}, filtered.Timestamps())
	assert.Equal(t, 3, tl.Len())

	first, _ := filtered.FirstEvent()
	first.Set("body", "changed")
	original, _ := tl.FirstEvent()
	assert.Equal(t, "created", bodyOf(t, original))
}

func TestMap(t *testing.T) {
	expected := threeSteps(t)

	toMap := New()
	for i, e := range expected.Events() {
		attrs := event.NewAttributes().With("a", i+1).With("body", bodyOf(t, e))
		require.NoError(t, toMap.Append(event.New(e.At(), attrs)))
	}

	mapped := toMap.Map(func(e *event.Event) *event.Attributes {
		text, _ := e.Get("body")
		return event.NewAttributes().With("body", text)
	})
	assert.True(t, mapped.Equal(expected))
	assert.Equal(t, toMap.Timestamps(), mapped.Timestamps())
}

func TestMapKeepsUntilAndKind(t *testing.T) {
	audit := event.NewKind("audit", nil)
	tl := New(WithKind(audit))
	require.NoError(t, tl.Append(event.New(1, nil, event.WithUntil(4), event.WithKind(audit))))

	mapped := tl.Map(func(*event.Event) *event.Attributes {
		return event.NewAttributes().With("k", "v")
	})
	e, _ := mapped.FirstEvent()
	until, ok := e.Until()
	assert.True(t, ok)
	assert.Equal(t, int64(4), until)
	assert.Same(t, audit, e.Kind())
	assert.Same(t, audit, mapped.Kind())
}

func TestProject(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(event.New(1408628762, event.NewAttributes().With("body", "created").With("timeframe", []any{4, 5}))))
	require.NoError(t, tl.Append(event.New(1408628769, event.NewAttributes().With("body", "processed").With("timeframe", []any{7, 8}))))
	require.NoError(t, tl.Append(event.New(1408628778, event.NewAttributes().With("body", "ended").With("timeframe", []any{10, 50}))))

	projected, err := tl.Project(event.ProjectAttribute("timeframe"))
	require.NoError(t, err)
	require.Equal(t, 3, projected.Len())

	first, _ := projected.Get(0)
	assert.Equal(t, int64(4), first.At())
	second, _ := projected.Get(1)
	until, ok := second.Until()
	assert.True(t, ok)
	assert.Equal(t, int64(8), until)

	for i, e := range projected.Events() {
		source, _ := tl.Get(i)
		assert.True(t, e.Attributes().Equal(source.Attributes()))
	}
}

func TestProjectError(t *testing.T) {
	tl := threeSteps(t)
	_, err := tl.Project(event.ProjectAttribute("timeframe"))
	assert.ErrorIs(t, err, event.ErrKeyNotFound)
}

func TestDeltas(t *testing.T) {
	count := func(at int64, n int, opts ...event.Option) *event.Event {
		return event.New(at, event.NewAttributes().With("count", n), opts...)
	}
	diff := func(prev, next *event.Event) *event.Attributes {
		a, _ := prev.Attributes().GetInt64("count")
		b, _ := next.Attributes().GetInt64("count")
		return event.NewAttributes().With("diff", b-a)
	}

	tests := []struct {
		name  string
		input []*event.Event
		want  []int64
	}{
		{name: "empty", input: nil, want: nil},
		{name: "single", input: []*event.Event{count(1, 1)}, want: nil},
		{name: "three", input: []*event.Event{count(1, 1), count(2, 4), count(3, 3)}, want: []int64{3, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := New()
			for _, e := range tt.input {
				require.NoError(t, tl.Append(e))
			}
			deltas := tl.Deltas(diff)
			assert.Equal(t, max(len(tt.input)-1, 0), deltas.Len())

			var got []int64
			for _, e := range deltas.Events() {
				value, err := e.Attributes().GetInt64("diff")
				require.NoError(t, err)
				got = append(got, value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeltasTiming(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(event.New(1, nil)))
	require.NoError(t, tl.Append(event.New(5, nil, event.WithUntil(9))))

	deltas := tl.Deltas(func(_, _ *event.Event) *event.Attributes { return nil })
	e, ok := deltas.FirstEvent()
	require.True(t, ok)
	assert.Equal(t, int64(5), e.At())
	until, ok := e.Until()
	assert.True(t, ok)
	assert.Equal(t, int64(9), until)
	assert.True(t, e.Empty())
}

func TestLast(t *testing.T) {
	tl := threeSteps(t)

	none := tl.Last(func(e *event.Event) bool { return e.At() <= 1408628769 })
	assert.Equal(t, 0, none.Len())

	run := tl.Last(func(e *event.Event) bool { return e.At() > 1408628762 })
	require.Equal(t, 2, run.Len())
	first, _ := run.FirstEvent()
	assert.Equal(t, int64(1408628769), first.At())
	assert.Equal(t, "processed", bodyOf(t, first))

	all := tl.Last(func(*event.Event) bool { return true })
	assert.True(t, all.Equal(tl))
}

func TestLastStopsAtFirstMismatch(t *testing.T) {
	tl := New()
	for _, text := range []string{"ok", "fail", "ok", "ok"} {
		require.NoError(t, tl.Append(body(int64(tl.Len()), text)))
	}

	run := tl.Last(func(e *event.Event) bool { return bodyOf(t, e) == "ok" })
	assert.Equal(t, []int64{2, 3}, run.Timestamps())
}

func TestMerge(t *testing.T) {
	a := New()
	require.NoError(t, a.Append(body(30, "a30")))
	require.NoError(t, a.Append(body(10, "a10")))
	b := New()
	require.NoError(t, b.Append(body(20, "b20")))
	require.NoError(t, b.Append(body(10, "b10")))

	merged, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 10, 20, 30}, merged.Timestamps())
	first, _ := merged.FirstEvent()
	assert.Equal(t, "a10", bodyOf(t, first))

	audit := event.NewKind("audit", nil)
	_, err = Merge(New(WithKind(audit)), a)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	empty, err := Merge()
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestSince(t *testing.T) {
	tl := threeSteps(t)
	clock := util.NewFixedClock(1408628780)

	recent := tl.Since(clock, 15*time.Second)
	assert.Equal(t, []int64{1408628769, 1408628778}, recent.Timestamps())
	assert.Equal(t, 3, tl.Since(clock, 0).Len())
}

func TestDeduplicate(t *testing.T) {
	tl := New()
	require.NoError(t, tl.Append(body(1, "a")))
	require.NoError(t, tl.Append(body(1, "a")))
	require.NoError(t, tl.Append(body(1, "b")))
	require.NoError(t, tl.Append(body(2, "a")))

	deduped := tl.Deduplicate()
	assert.Equal(t, []int64{1, 1, 2}, deduped.Timestamps())
}
