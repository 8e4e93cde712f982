package timeline

import (
	"fmt"

	"github.com/penwyp/go-timeline/internal/core/event"
)

// ErrMalformed is returned by FromJSON for input that is not a list of event objects
var ErrMalformed = event.ErrMalformed

// Structured returns the structured form of every event, in order
func (tl *Timeline) Structured() any {
	items := make([]*event.Attributes, len(tl.events))
	for i, e := range tl.events {
		items[i] = e.AsStructured(true)
	}
	return items
}

// MarshalJSON encodes the timeline as an array of event objects
func (tl *Timeline) MarshalJSON() ([]byte, error) {
	return event.Marshal(tl)
}

func (tl *Timeline) String() string {
	data, err := event.Marshal(tl)
	if err != nil {
		return fmt.Sprintf("Timeline(%d events)", len(tl.events))
	}
	return string(data)
}

// FromJSON decodes a JSON array of event objects. The null markers decode
// to an empty timeline of the decoded kind.
func FromJSON(data []byte, opts ...event.DecodeOption) (*Timeline, error) {
	events, err := event.DecodeList(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}
	if len(events) == 0 {
		return New(WithKind(event.DecodedKind(opts...))), nil
	}
	return FromEvents(events...)
}
