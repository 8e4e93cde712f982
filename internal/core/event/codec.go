package event

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"

	"github.com/penwyp/go-timeline/internal/util"
)

// ErrMalformed is returned when decoding input that is not a list of event objects
var ErrMalformed = errors.New("malformed event data")

// api sorts nested map keys so that encoding is deterministic
var api = sonic.ConfigStd

// Structurer is implemented by values that serialize through a structured
// (JSON-like) representation.
type Structurer interface {
	Structured() any
}

// Marshal encodes the structured representation of v
func Marshal(v Structurer) ([]byte, error) {
	return api.Marshal(v.Structured())
}

// MarshalIndent is Marshal with indentation
func MarshalIndent(v Structurer, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v.Structured(), prefix, indent)
}

type decodeConfig struct {
	kind  *Kind
	clock util.Clock
}

// DecodeOption configures decoding
type DecodeOption func(*decodeConfig)

// DecodeKind sets the kind of decoded events
func DecodeKind(kind *Kind) DecodeOption {
	return func(c *decodeConfig) {
		c.kind = kind
	}
}

// DecodeClock sets the clock anchoring events without KeyAt
func DecodeClock(clock util.Clock) DecodeOption {
	return func(c *decodeConfig) {
		c.clock = clock
	}
}

func newDecodeConfig(opts []DecodeOption) *decodeConfig {
	config := &decodeConfig{kind: Base}
	for _, opt := range opts {
		opt(config)
	}
	if config.kind == nil {
		config.kind = Base
	}
	if config.clock == nil {
		config.clock = util.GetTimeProvider()
	}
	return config
}

// DecodedKind returns the kind given to events decoded with opts
func DecodedKind(opts ...DecodeOption) *Kind {
	config := &decodeConfig{kind: Base}
	for _, opt := range opts {
		opt(config)
	}
	if config.kind == nil {
		return Base
	}
	return config.kind
}

// FromStructured builds an event from its structured form: KeyAt and
// KeyUntil are taken out of the attributes, a missing KeyAt means now.
func FromStructured(fields *Attributes, opts ...DecodeOption) (*Event, error) {
	return fromStructured(fields, newDecodeConfig(opts))
}

func fromStructured(fields *Attributes, config *decodeConfig) (*Event, error) {
	attrs := fields.Clone()
	eventOpts := []Option{WithKind(config.kind)}

	var at int64
	if raw, ok := attrs.Get(KeyAt); ok {
		value, err := timestampOf(KeyAt, raw)
		if err != nil {
			return nil, err
		}
		at = value
		attrs.Delete(KeyAt)
	} else {
		at = config.clock.NowAsTimestamp()
	}

	if raw, ok := attrs.Get(KeyUntil); ok {
		if raw != nil {
			until, err := timestampOf(KeyUntil, raw)
			if err != nil {
				return nil, err
			}
			eventOpts = append(eventOpts, WithUntil(until))
		}
		attrs.Delete(KeyUntil)
	}

	return New(at, attrs, eventOpts...), nil
}

func timestampOf(key string, raw any) (int64, error) {
	_, value, exact, ok := asNumber(raw)
	if !ok || !exact {
		return 0, fmt.Errorf("%w: %s must be an integral timestamp, got %v", ErrMalformed, key, raw)
	}
	return value, nil
}

// Decode parses a single JSON event object
func Decode(data []byte, opts ...DecodeOption) (*Event, error) {
	if !api.Valid(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root, err := sonic.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fields, err := decodeObject(&root)
	if err != nil {
		return nil, err
	}
	return fromStructured(fields, newDecodeConfig(opts))
}

// nullMarkers decode to an empty list
var nullMarkers = [][]byte{[]byte("null"), []byte("None")}

// DecodeList parses a JSON array of event objects. The null markers
// ("null", "None") decode to no events.
func DecodeList(data []byte, opts ...DecodeOption) ([]*Event, error) {
	trimmed := bytes.TrimSpace(data)
	for _, marker := range nullMarkers {
		if bytes.Equal(trimmed, marker) {
			return nil, nil
		}
	}
	if !api.Valid(trimmed) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root, err := sonic.Get(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if root.TypeSafe() != ast.V_ARRAY {
		return nil, fmt.Errorf("%w: expecting a list of objects", ErrMalformed)
	}

	config := newDecodeConfig(opts)
	var events []*Event
	var decodeErr error
	err = root.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		fields, err := decodeObject(node)
		if err != nil {
			decodeErr = fmt.Errorf("element %d: %w", path.Index, err)
			return false
		}
		e, err := fromStructured(fields, config)
		if err != nil {
			decodeErr = fmt.Errorf("element %d: %w", path.Index, err)
			return false
		}
		events = append(events, e)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return events, nil
}

// decodeObject reads a JSON object keeping its key order
func decodeObject(node *ast.Node) (*Attributes, error) {
	if node.TypeSafe() != ast.V_OBJECT {
		return nil, fmt.Errorf("%w: expecting an object", ErrMalformed)
	}

	attrs := NewAttributes()
	var valueErr error
	err := node.ForEach(func(path ast.Sequence, value *ast.Node) bool {
		decoded, err := value.InterfaceUseNumber()
		if err != nil {
			valueErr = fmt.Errorf("%w: attribute %q: %v", ErrMalformed, *path.Key, err)
			return false
		}
		attrs.Set(*path.Key, normalize(decoded))
		return true
	})
	if valueErr != nil {
		return nil, valueErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return attrs, nil
}
