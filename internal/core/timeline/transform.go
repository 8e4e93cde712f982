package timeline

import (
	"fmt"

	"github.com/penwyp/go-timeline/internal/core/event"
)

// Predicate selects events
type Predicate func(*event.Event) bool

// Mapper returns the full replacement attributes of an event
type Mapper func(*event.Event) *event.Attributes

// DeltaFunc computes the attributes describing the change between two
// consecutive events
type DeltaFunc func(prev, next *event.Event) *event.Attributes

func (tl *Timeline) derive() *Timeline {
	return &Timeline{kind: tl.kind}
}

// Filter returns copies of the events matching pred, in order
func (tl *Timeline) Filter(pred Predicate) *Timeline {
	result := tl.derive()
	for _, e := range tl.events {
		if pred(e) {
			result.events = append(result.events, e.Clone())
		}
	}
	return result
}

// Map returns a timeline with the timestamps of every event and the
// attributes computed by fn
func (tl *Timeline) Map(fn Mapper) *Timeline {
	result := tl.derive()
	result.events = make([]*event.Event, 0, len(tl.events))
	for _, e := range tl.events {
		result.events = append(result.events, event.New(e.At(), fn(e), retimeOptions(e, tl.kind)...))
	}
	return result
}

// Project re-times every event with fn, attributes are kept
func (tl *Timeline) Project(fn event.Projector) (*Timeline, error) {
	result := tl.derive()
	result.events = make([]*event.Event, 0, len(tl.events))
	for i, e := range tl.events {
		projected, err := e.Project(fn)
		if err != nil {
			return nil, fmt.Errorf("project event %d: %w", i, err)
		}
		result.events = append(result.events, projected)
	}
	return result, nil
}

// Deltas returns one event per consecutive pair, timed like the later
// event and carrying fn(prev, next)
func (tl *Timeline) Deltas(fn DeltaFunc) *Timeline {
	result := New()
	for i := 1; i < len(tl.events); i++ {
		prev, next := tl.events[i-1], tl.events[i]
		result.events = append(result.events, event.New(next.At(), fn(prev, next), retimeOptions(next, event.Base)...))
	}
	return result
}

// Last returns the trailing run of events matching pred, scanning backward
// from the end and stopping at the first mismatch
func (tl *Timeline) Last(pred Predicate) *Timeline {
	start := len(tl.events)
	for start > 0 && pred(tl.events[start-1]) {
		start--
	}
	result := tl.derive()
	for _, e := range tl.events[start:] {
		result.events = append(result.events, e.Clone())
	}
	return result
}

func retimeOptions(e *event.Event, kind *event.Kind) []event.Option {
	opts := []event.Option{event.WithKind(kind)}
	if until, ok := e.Until(); ok {
		opts = append(opts, event.WithUntil(until))
	}
	return opts
}
