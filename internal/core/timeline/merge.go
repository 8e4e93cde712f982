package timeline

import (
	"fmt"
	"time"

	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/util"
)

// Merge concatenates timelines and sorts the result by anchor. The kind is
// the one of the first timeline; events of other kinds are rejected.
func Merge(timelines ...*Timeline) (*Timeline, error) {
	if len(timelines) == 0 {
		return New(), nil
	}

	var totalSize int
	for _, tl := range timelines {
		totalSize += tl.Len()
	}

	merged := New(WithKind(timelines[0].kind))
	merged.events = make([]*event.Event, 0, totalSize)
	for i, tl := range timelines {
		for _, e := range tl.events {
			if err := merged.Append(e.Clone()); err != nil {
				return nil, fmt.Errorf("timeline %d: %w", i, err)
			}
		}
	}

	merged.Sort()
	return merged, nil
}

// Since keeps the events anchored after clock's now minus d. A zero or
// negative d keeps everything.
func (tl *Timeline) Since(clock util.Clock, d time.Duration) *Timeline {
	if d <= 0 {
		return tl.Filter(func(*event.Event) bool { return true })
	}
	cutoff := clock.NowAsTimestamp() - int64(d.Seconds())
	return tl.Filter(func(e *event.Event) bool {
		return e.At() > cutoff
	})
}

// Deduplicate drops events equal to an earlier event with the same anchor
func (tl *Timeline) Deduplicate() *Timeline {
	seen := make(map[int64][]*event.Event)
	result := tl.derive()
	for _, e := range tl.events {
		duplicate := false
		for _, kept := range seen[e.At()] {
			if kept.Equal(e) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		seen[e.At()] = append(seen[e.At()], e)
		result.events = append(result.events, e.Clone())
	}
	return result
}
