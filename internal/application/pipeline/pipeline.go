package pipeline

import (
	"fmt"

	"github.com/penwyp/go-timeline/internal/core/delta"
	"github.com/penwyp/go-timeline/internal/core/event"
	"github.com/penwyp/go-timeline/internal/core/timeline"
	"github.com/penwyp/go-timeline/internal/util"
)

// Pipeline applies a validated Config to timelines
type Pipeline struct {
	config Config
}

// New validates config and returns a pipeline
func New(config Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{config: config}, nil
}

func (p *Pipeline) Config() Config {
	return p.config
}

// Apply returns the transformed copy of tl. The input is left untouched.
func (p *Pipeline) Apply(tl *timeline.Timeline) (*timeline.Timeline, error) {
	c := p.config
	result := tl.Copy()
	util.LogDebugf("Pipeline start: %d events", result.Len())

	if len(c.Where) > 0 {
		result = result.Filter(Matches(c.Where))
		util.LogDebugf("Where %v: %d events", c.Where, result.Len())
	}
	if c.Window != nil {
		window := *c.Window
		var windowErr error
		result = result.Filter(func(e *event.Event) bool {
			tf, err := e.Timeframe()
			if err != nil {
				windowErr = err
				return false
			}
			return tf.Overlaps(window)
		})
		if windowErr != nil {
			return nil, fmt.Errorf("window %s: %w", window, windowErr)
		}
		util.LogDebugf("Window %s: %d events", window, result.Len())
	}
	if c.Since > 0 {
		result = result.Since(c.Clock, c.Since)
		util.LogDebugf("Since %v: %d events", c.Since, result.Len())
	}
	if c.Dedupe {
		result = result.Deduplicate()
	}

	if c.Sort {
		result.Sort()
	}
	if c.Reverse {
		result.Reverse()
	}

	if c.Project != "" {
		projected, err := result.Project(event.ProjectAttribute(c.Project))
		if err != nil {
			return nil, err
		}
		result = projected
	}

	if len(c.Last) > 0 {
		result = result.Last(Matches(c.Last))
		util.LogDebugf("Last %v: %d events", c.Last, result.Len())
	}

	switch c.Deltas {
	case DeltaChanges:
		result = result.Deltas(delta.Changes)
	case DeltaNumeric:
		result = result.Deltas(delta.Numeric(c.DeltaKeys...))
	}

	if c.Trim > 0 {
		if err := result.Trim(c.Trim); err != nil {
			return nil, err
		}
	}

	util.LogDebugf("Pipeline done: %d events", result.Len())
	return result, nil
}

// Matches returns a predicate true for events holding every attribute of want
func Matches(want map[string]any) timeline.Predicate {
	return func(e *event.Event) bool {
		for key, expected := range want {
			value, ok := e.Attributes().Get(key)
			if !ok || !event.EqualValues(expected, value) {
				return false
			}
		}
		return true
	}
}
