package event

import (
	"fmt"

	"github.com/penwyp/go-timeline/internal/core/timeframe"
	"github.com/penwyp/go-timeline/internal/util"
)

// Wire keys of the timestamps in the structured form
const (
	KeyAt    = "_at"
	KeyUntil = "_until"
)

// Event is a timestamped record with an optional end and open attributes.
// Attributes may change in place, timestamps never do: re-timing goes
// through Project.
type Event struct {
	kind     *Kind
	at       int64
	until    int64
	hasUntil bool
	attrs    *Attributes
}

// Option configures a new event
type Option func(*Event)

// WithUntil sets the end timestamp
func WithUntil(until int64) Option {
	return func(e *Event) {
		e.until = until
		e.hasUntil = true
	}
}

// WithKind sets the event kind, Base by default
func WithKind(kind *Kind) Option {
	return func(e *Event) {
		if kind != nil {
			e.kind = kind
		}
	}
}

// New creates an event anchored at at. The event owns attrs from now on,
// a nil attrs means no attributes.
func New(at int64, attrs *Attributes, opts ...Option) *Event {
	if attrs == nil {
		attrs = NewAttributes()
	}
	e := &Event{kind: Base, at: at, attrs: attrs}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now creates an event anchored at the current time of clock
func Now(clock util.Clock, attrs *Attributes, opts ...Option) *Event {
	return New(clock.NowAsTimestamp(), attrs, opts...)
}

func (e *Event) At() int64 {
	return e.at
}

// Until returns the end timestamp and whether it was set
func (e *Event) Until() (int64, bool) {
	return e.until, e.hasUntil
}

func (e *Event) Kind() *Kind {
	return e.kind
}

// Attributes gives direct access to the attribute set
func (e *Event) Attributes() *Attributes {
	return e.attrs
}

// Get returns the attribute under key or ErrKeyNotFound
func (e *Event) Get(key string) (any, error) {
	return e.attrs.Lookup(key)
}

func (e *Event) Set(key string, value any) {
	e.attrs.Set(key, value)
}

func (e *Event) Delete(key string) bool {
	return e.attrs.Delete(key)
}

// Empty returns true for an event without attributes
func (e *Event) Empty() bool {
	return e.attrs.Len() == 0
}

// Timeframe returns [at, until], momentary when until is not set
func (e *Event) Timeframe() (timeframe.Timeframe[int64], error) {
	if !e.hasUntil {
		return timeframe.Momentary(e.at), nil
	}
	return timeframe.New(e.at, e.until)
}

// AsStructured returns a copy of the attributes followed, with includeTime,
// by the timestamps under KeyAt and KeyUntil (only when set).
func (e *Event) AsStructured(includeTime bool) *Attributes {
	result := e.attrs.Clone()
	if includeTime {
		result.Set(KeyAt, e.at)
		if e.hasUntil {
			result.Set(KeyUntil, e.until)
		}
	}
	return result
}

// Structured is the serialization payload of the event
func (e *Event) Structured() any {
	return e.AsStructured(true)
}

// Equal compares timestamps and attributes, the kind is ignored
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.at != other.at || e.hasUntil != other.hasUntil {
		return false
	}
	if e.hasUntil && e.until != other.until {
		return false
	}
	return e.attrs.Equal(other.attrs)
}

// Clone returns a deep copy sharing only the kind
func (e *Event) Clone() *Event {
	clone := *e
	clone.attrs = e.attrs.Clone()
	return &clone
}

// Retime returns a copy of the event with new timestamps
func (e *Event) Retime(at int64, until *int64) *Event {
	clone := e.Clone()
	clone.at = at
	clone.until, clone.hasUntil = 0, false
	if until != nil {
		clone.until, clone.hasUntil = *until, true
	}
	return clone
}

// MarshalJSON encodes the structured form
func (e *Event) MarshalJSON() ([]byte, error) {
	return Marshal(e)
}

func (e *Event) String() string {
	data, err := Marshal(e)
	if err != nil {
		return fmt.Sprintf("Event(%v %d)", e.attrs.ToMap(), e.at)
	}
	return string(data)
}
