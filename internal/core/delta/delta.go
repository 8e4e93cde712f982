// Package delta provides stock functions computing the change between two
// consecutive events, for use with Timeline.Deltas.
package delta

import (
	"github.com/penwyp/go-timeline/internal/core/event"
)

const (
	KeyFrom = "from"
	KeyTo   = "to"
)

// Changes reports every attribute added, removed or modified between prev and
// next as key: {"from": old, "to": new}. A missing side is null.
func Changes(prev, next *event.Event) *event.Attributes {
	result := event.NewAttributes()
	before, after := prev.Attributes(), next.Attributes()

	before.Range(func(key string, old any) bool {
		current, ok := after.Get(key)
		if !ok {
			result.Set(key, change(old, nil))
		} else if !event.EqualValues(old, current) {
			result.Set(key, change(old, current))
		}
		return true
	})
	after.Range(func(key string, current any) bool {
		if !before.Has(key) {
			result.Set(key, change(nil, current))
		}
		return true
	})
	return result
}

func change(from, to any) *event.Attributes {
	return event.NewAttributes().With(KeyFrom, from).With(KeyTo, to)
}

// Numeric returns a delta function emitting next[k] - prev[k] for each key.
// Keys missing or not numeric on either side are skipped; integral
// differences stay integers.
func Numeric(keys ...string) func(prev, next *event.Event) *event.Attributes {
	return func(prev, next *event.Event) *event.Attributes {
		result := event.NewAttributes()
		for _, key := range keys {
			if a, err := prev.Attributes().GetInt64(key); err == nil {
				if b, err := next.Attributes().GetInt64(key); err == nil {
					result.Set(key, b-a)
					continue
				}
			}
			a, err := prev.Attributes().GetFloat64(key)
			if err != nil {
				continue
			}
			b, err := next.Attributes().GetFloat64(key)
			if err != nil {
				continue
			}
			result.Set(key, b-a)
		}
		return result
	}
}
