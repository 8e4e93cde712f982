package timeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeframe"
)

var (
	// ErrTypeMismatch is returned when appending an event of another kind
	ErrTypeMismatch = errors.New("event kind does not match timeline")
	// ErrUnderflow is returned when popping from an empty timeline
	ErrUnderflow = errors.New("timeline is empty")
)

// Timeline is an ordered sequence of events sharing a kind. Insertion order
// is the canonical order; call Sort for chronological order.
// A Timeline is not safe for concurrent mutation, fork it with Copy.
type Timeline struct {
	kind   *event.Kind
	events []*event.Event
}

// Option configures a new timeline
type Option func(*Timeline)

// WithKind sets the kind accepted by Append, event.Base by default
func WithKind(kind *event.Kind) Option {
	return func(tl *Timeline) {
		if kind != nil {
			tl.kind = kind
		}
	}
}

// New creates an empty timeline
func New(opts ...Option) *Timeline {
	tl := &Timeline{kind: event.Base}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// FromEvents builds a timeline of the kind of the first event. The events
// are owned by the timeline from now on.
func FromEvents(events ...*event.Event) (*Timeline, error) {
	tl := New()
	if len(events) == 0 {
		return tl, nil
	}
	tl.kind = events[0].Kind()
	for i, e := range events {
		if err := tl.Append(e); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return tl, nil
}

// Copy returns a deep copy of the timeline
func (tl *Timeline) Copy() *Timeline {
	clone := &Timeline{kind: tl.kind, events: make([]*event.Event, len(tl.events))}
	for i, e := range tl.events {
		clone.events[i] = e.Clone()
	}
	return clone
}

func (tl *Timeline) Kind() *event.Kind {
	return tl.kind
}

// Append adds e at the end
func (tl *Timeline) Append(e *event.Event) error {
	if e == nil || !e.Kind().Is(tl.kind) {
		var got *event.Kind
		if e != nil {
			got = e.Kind()
		}
		return fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, tl.kind, got)
	}
	tl.events = append(tl.events, e)
	return nil
}

// Extend appends the events of other
func (tl *Timeline) Extend(other *Timeline) {
	tl.events = append(tl.events, other.events...)
}

// ExtendEarlier prepends the events of other, keeping their order
func (tl *Timeline) ExtendEarlier(other *Timeline) {
	events := make([]*event.Event, 0, len(other.events)+len(tl.events))
	events = append(events, other.events...)
	tl.events = append(events, tl.events...)
}

// PopFirst removes and returns the first event
func (tl *Timeline) PopFirst() (*event.Event, error) {
	if len(tl.events) == 0 {
		return nil, ErrUnderflow
	}
	first := tl.events[0]
	tl.events[0] = nil
	tl.events = tl.events[1:]
	return first, nil
}

// Trim drops the oldest inserted events until at most max remain. A
// negative max empties the timeline and fails with ErrUnderflow.
func (tl *Timeline) Trim(max int) error {
	for len(tl.events) > max {
		if _, err := tl.PopFirst(); err != nil {
			return fmt.Errorf("trim to %d: %w", max, err)
		}
	}
	return nil
}

// Sort orders events by anchor, ties keep their relative order
func (tl *Timeline) Sort() {
	sort.SliceStable(tl.events, func(i, j int) bool {
		return tl.events[i].At() < tl.events[j].At()
	})
}

// Reverse reverses the insertion order
func (tl *Timeline) Reverse() {
	for i, j := 0, len(tl.events)-1; i < j; i, j = i+1, j-1 {
		tl.events[i], tl.events[j] = tl.events[j], tl.events[i]
	}
}

func (tl *Timeline) Len() int {
	return len(tl.events)
}

func (tl *Timeline) Empty() bool {
	return len(tl.events) == 0
}

// Get returns the event at index i, negative indices count from the end
func (tl *Timeline) Get(i int) (*event.Event, bool) {
	if i < 0 {
		i += len(tl.events)
	}
	if i < 0 || i >= len(tl.events) {
		return nil, false
	}
	return tl.events[i], true
}

// Events returns the events in current order. The slice is a copy, the
// events are not.
func (tl *Timeline) Events() []*event.Event {
	return append([]*event.Event(nil), tl.events...)
}

func (tl *Timeline) FirstEvent() (*event.Event, bool) {
	return tl.Get(0)
}

func (tl *Timeline) LastEvent() (*event.Event, bool) {
	return tl.Get(-1)
}

// FirstEvents returns up to n events from the front
func (tl *Timeline) FirstEvents(n int) []*event.Event {
	n = clamp(n, len(tl.events))
	return append([]*event.Event(nil), tl.events[:n]...)
}

// LastEvents returns up to n events from the back
func (tl *Timeline) LastEvents(n int) []*event.Event {
	n = clamp(n, len(tl.events))
	return append([]*event.Event(nil), tl.events[len(tl.events)-n:]...)
}

func clamp(n, size int) int {
	if n < 0 {
		return 0
	}
	if n > size {
		return size
	}
	return n
}

// Timestamps returns the anchors in current order
func (tl *Timeline) Timestamps() []int64 {
	result := make([]int64, len(tl.events))
	for i, e := range tl.events {
		result[i] = e.At()
	}
	return result
}

// Timeframes returns the timeframe of every event in current order
func (tl *Timeline) Timeframes() ([]timeframe.Timeframe[int64], error) {
	result := make([]timeframe.Timeframe[int64], len(tl.events))
	for i, e := range tl.events {
		tf, err := e.Timeframe()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		result[i] = tf
	}
	return result, nil
}

// Timeframe is the union of the event timeframes, nil when empty
func (tl *Timeline) Timeframe() (*timeframe.Timeframe[int64], error) {
	frames, err := tl.Timeframes()
	if err != nil {
		return nil, err
	}
	return timeframe.Union(frames), nil
}

// EventAt returns the first event anchored at ts, or def
func (tl *Timeline) EventAt(ts int64, def *event.Event) *event.Event {
	for _, e := range tl.events {
		if e.At() == ts {
			return e
		}
	}
	return def
}

// Equal compares events pairwise in order
func (tl *Timeline) Equal(other *Timeline) bool {
	if other == nil || len(tl.events) != len(other.events) {
		return false
	}
	for i, e := range tl.events {
		if !e.Equal(other.events[i]) {
			return false
		}
	}
	return true
}
