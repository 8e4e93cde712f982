package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-timeline/internal/core/timeframe"
	"github.com/penwyp/go-timeline/internal/util"
)

// Delta modes
const (
	DeltaNone    = ""
	DeltaChanges = "changes"
	DeltaNumeric = "numeric"
)

// Config describes the transformations applied to a timeline, in the order
// of the fields below
type Config struct {
	// Selection
	Where  map[string]any // attributes the events must hold
	Window *timeframe.Timeframe[int64]
	Since  time.Duration // events anchored within this span before now
	Dedupe bool

	// Ordering
	Sort    bool
	Reverse bool

	// Re-timing
	Project string // attribute holding the new anchor or span

	// Derivation
	Last      map[string]any // keep the trailing run holding these attributes
	Deltas    string         // DeltaNone, DeltaChanges or DeltaNumeric
	DeltaKeys []string       // attributes differenced by DeltaNumeric

	// Retention
	Trim int // keep the last Trim events, 0 keeps everything

	Clock util.Clock
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	switch c.Deltas {
	case DeltaNone, DeltaChanges:
	case DeltaNumeric:
		if len(c.DeltaKeys) == 0 {
			return fmt.Errorf("numeric deltas need at least one key")
		}
	default:
		return fmt.Errorf("unknown delta mode %q (valid: %s, %s)", c.Deltas, DeltaChanges, DeltaNumeric)
	}
	if c.Trim < 0 {
		return fmt.Errorf("trim must not be negative, got %d", c.Trim)
	}
	if c.Since < 0 {
		return fmt.Errorf("since must not be negative, got %v", c.Since)
	}
	if c.Clock == nil {
		c.Clock = util.GetTimeProvider()
	}
	return nil
}

// ParseAssignments reads key=value pairs. Values are decoded as JSON when
// possible and kept as plain strings otherwise.
func ParseAssignments(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	result := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", pair)
		}
		var value any
		if err := sonic.UnmarshalString(raw, &value); err != nil {
			value = raw
		}
		result[key] = value
	}
	return result, nil
}
