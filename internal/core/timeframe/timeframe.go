package timeframe

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrConstruction is returned when the bounds cannot form a timeframe
var ErrConstruction = errors.New("invalid timeframe")

// Timeframe is a closed interval [from, to] on an ordered time axis.
// The zero value is the momentary timeframe at the zero of T.
type Timeframe[T cmp.Ordered] struct {
	from T
	to   T
}

// New builds a timeframe from one or two bounds. A single bound makes a
// momentary timeframe.
func New[T cmp.Ordered](from T, to ...T) (Timeframe[T], error) {
	var result Timeframe[T]
	if len(to) > 1 {
		return result, fmt.Errorf("%w: at least one and at most two bounds expected, got %d", ErrConstruction, len(to)+1)
	}

	upper := from
	if len(to) == 1 {
		upper = to[0]
	}
	if from > upper {
		return result, fmt.Errorf("%w: first point %v is after second point %v", ErrConstruction, from, upper)
	}

	result.from, result.to = from, upper
	return result, nil
}

// Must is New for literals known to be valid
func Must[T cmp.Ordered](from T, to ...T) Timeframe[T] {
	tf, err := New(from, to...)
	if err != nil {
		panic(err)
	}
	return tf
}

// Momentary returns the zero-width timeframe at t
func Momentary[T cmp.Ordered](at T) Timeframe[T] {
	return Timeframe[T]{from: at, to: at}
}

func (t Timeframe[T]) From() T {
	return t.from
}

func (t Timeframe[T]) To() T {
	return t.to
}

// IsMomentary returns true when both bounds are equal
func (t Timeframe[T]) IsMomentary() bool {
	return t.from == t.to
}

// Contains returns true when value lies within the closed interval
func (t Timeframe[T]) Contains(value T) bool {
	return t.from <= value && value <= t.to
}

// Overlaps returns true when both timeframes share at least one point
func (t Timeframe[T]) Overlaps(other Timeframe[T]) bool {
	return t.from <= other.to && other.from <= t.to
}

// Merge returns the smallest timeframe covering t and other
func (t Timeframe[T]) Merge(other Timeframe[T]) Timeframe[T] {
	return *Union([]Timeframe[T]{t, other})
}

func (t Timeframe[T]) Equal(other Timeframe[T]) bool {
	return t.from == other.from && t.to == other.to
}

// Compare orders timeframes lexicographically on (from, to)
func (t Timeframe[T]) Compare(other Timeframe[T]) int {
	if c := cmp.Compare(t.from, other.from); c != 0 {
		return c
	}
	return cmp.Compare(t.to, other.to)
}

func (t Timeframe[T]) String() string {
	return fmt.Sprintf("Timeframe(%v, %v)", t.from, t.to)
}

// Union returns the smallest timeframe covering all frames, nil for none
func Union[T cmp.Ordered](frames []Timeframe[T]) *Timeframe[T] {
	if len(frames) == 0 {
		return nil
	}

	result := frames[0]
	for _, frame := range frames[1:] {
		result.from = min(result.from, frame.from)
		result.to = max(result.to, frame.to)
	}
	return &result
}

// Intersection returns the largest timeframe contained in all frames.
// Result is nil for no frames, for a nil member or when frames do not overlap.
func Intersection[T cmp.Ordered](frames []*Timeframe[T]) *Timeframe[T] {
	if len(frames) == 0 {
		return nil
	}
	for _, frame := range frames {
		if frame == nil {
			return nil
		}
	}

	result := *frames[0]
	for _, frame := range frames[1:] {
		result.from = max(result.from, frame.from)
		result.to = min(result.to, frame.to)
	}
	if result.from > result.to {
		return nil
	}
	return &result
}
