package event

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrProjection is returned when an attribute cannot be read as timestamps
var ErrProjection = errors.New("invalid projection")

// Projection is the new anchor of a projected event: a single timestamp or
// a span with an end.
type Projection struct {
	at    int64
	until int64
	span  bool
}

// Anchor projects onto a momentary timestamp
func Anchor(at int64) Projection {
	return Projection{at: at}
}

// Span projects onto [at, until]
func Span(at, until int64) Projection {
	return Projection{at: at, until: until, span: true}
}

func (p Projection) At() int64 {
	return p.at
}

// Until returns the end and whether the projection is a span
func (p Projection) Until() (int64, bool) {
	return p.until, p.span
}

func (p Projection) IsSpan() bool {
	return p.span
}

// Projector derives a projection from an event
type Projector func(*Event) (Projection, error)

// Project returns a new event with the same attributes and kind, timed by fn
func (e *Event) Project(fn Projector) (*Event, error) {
	projection, err := fn(e)
	if err != nil {
		return nil, err
	}
	if until, ok := projection.Until(); ok {
		return e.Retime(projection.At(), &until), nil
	}
	return e.Retime(projection.At(), nil), nil
}

// ProjectAttribute reads the projection from the attribute under key: a
// number anchors the event, a two-number sequence spans it.
func ProjectAttribute(key string) Projector {
	return func(e *Event) (Projection, error) {
		value, err := e.Get(key)
		if err != nil {
			return Projection{}, err
		}
		return projectionOf(key, value)
	}
}

func projectionOf(key string, value any) (Projection, error) {
	if _, at, exact, ok := asNumber(value); ok {
		if !exact {
			return Projection{}, fmt.Errorf("%w: %q holds non integral timestamp %v", ErrProjection, key, value)
		}
		return Anchor(at), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Projection{}, fmt.Errorf("%w: %q is %T, expected a timestamp or a pair", ErrProjection, key, value)
	}
	if rv.Len() != 2 {
		return Projection{}, fmt.Errorf("%w: %q holds %d values, expected a pair", ErrProjection, key, rv.Len())
	}

	var bounds [2]int64
	for i := range bounds {
		_, bound, exact, ok := asNumber(rv.Index(i).Interface())
		if !ok || !exact {
			return Projection{}, fmt.Errorf("%w: %q[%d] is not an integral timestamp", ErrProjection, key, i)
		}
		bounds[i] = bound
	}
	return Span(bounds[0], bounds[1]), nil
}
