package event

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	// ErrKeyNotFound is returned when reading a missing attribute
	ErrKeyNotFound = errors.New("attribute not found")
	// ErrWrongType is returned by typed accessors when the value has another type
	ErrWrongType = errors.New("attribute has unexpected type")
)

// Attributes is an ordered mapping of attribute names to JSON-like values.
// Iteration, serialization and structured views follow insertion order.
// The zero value is an empty, usable set.
type Attributes struct {
	keys   []string
	values map[string]any
}

// NewAttributes returns an empty attribute set
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]any)}
}

// FromMap builds attributes from a plain map, keys in lexical order
func FromMap(m map[string]any) *Attributes {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := NewAttributes()
	for _, k := range keys {
		attrs.Set(k, m[k])
	}
	return attrs
}

// With sets key and returns the receiver for chaining
func (a *Attributes) With(key string, value any) *Attributes {
	a.Set(key, value)
	return a
}

// Set adds or replaces key. Replacing keeps the original position.
func (a *Attributes) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key
func (a *Attributes) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	value, ok := a.values[key]
	return value, ok
}

// Has returns true when key is set
func (a *Attributes) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Delete removes key, returning false when it was not set
func (a *Attributes) Delete(key string) bool {
	if !a.Has(key) {
		return false
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	return true
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns the attribute names in insertion order
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// SortedKeys returns the attribute names in lexical order
func (a *Attributes) SortedKeys() []string {
	keys := a.Keys()
	sort.Strings(keys)
	return keys
}

// Range calls fn for each attribute in order until it returns false
func (a *Attributes) Range(fn func(key string, value any) bool) {
	if a == nil {
		return
	}
	for _, k := range a.keys {
		if !fn(k, a.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy
func (a *Attributes) Clone() *Attributes {
	result := NewAttributes()
	a.Range(func(key string, value any) bool {
		result.Set(key, cloneValue(value))
		return true
	})
	return result
}

// ToMap returns a plain map view, nested attributes converted too
func (a *Attributes) ToMap() map[string]any {
	result := make(map[string]any, a.Len())
	a.Range(func(key string, value any) bool {
		if nested, ok := value.(*Attributes); ok {
			result[key] = nested.ToMap()
		} else {
			result[key] = value
		}
		return true
	})
	return result
}

// Equal compares both sets as mappings, regardless of key order
func (a *Attributes) Equal(other *Attributes) bool {
	if a.Len() != other.Len() {
		return false
	}
	equal := true
	a.Range(func(key string, value any) bool {
		otherValue, ok := other.Get(key)
		equal = ok && valuesEqual(value, otherValue)
		return equal
	})
	return equal
}

// Lookup returns the value under key or ErrKeyNotFound
func (a *Attributes) Lookup(key string) (any, error) {
	value, ok := a.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return value, nil
}

func wrongType(key string, want string, value any) error {
	return fmt.Errorf("%w: %q is %T, expected %s", ErrWrongType, key, value, want)
}

// GetString returns the string value under key
func (a *Attributes) GetString(key string) (string, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", wrongType(key, "string", value)
	}
	return s, nil
}

// GetInt64 returns the integral value under key
func (a *Attributes) GetInt64(key string) (int64, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return 0, err
	}
	_, i, exact, ok := asNumber(value)
	if !ok || !exact {
		return 0, wrongType(key, "integer", value)
	}
	return i, nil
}

// GetFloat64 returns the numeric value under key
func (a *Attributes) GetFloat64(key string) (float64, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return 0, err
	}
	f, _, _, ok := asNumber(value)
	if !ok {
		return 0, wrongType(key, "number", value)
	}
	return f, nil
}

// GetBool returns the boolean value under key
func (a *Attributes) GetBool(key string) (bool, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, wrongType(key, "bool", value)
	}
	return b, nil
}

// GetSlice returns the sequence under key as []any
func (a *Attributes) GetSlice(key string) ([]any, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return nil, err
	}
	if items, ok := value.([]any); ok {
		return items, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, wrongType(key, "sequence", value)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// GetMap returns the nested mapping under key
func (a *Attributes) GetMap(key string) (map[string]any, error) {
	value, err := a.Lookup(key)
	if err != nil {
		return nil, err
	}
	m := toPlainMap(value)
	if m == nil {
		return nil, wrongType(key, "mapping", value)
	}
	return m, nil
}

// Structured returns the attributes themselves
func (a *Attributes) Structured() any {
	return a
}

// MarshalJSON encodes the attributes as an object in insertion order
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	var err error
	a.Range(func(key string, value any) bool {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		var encoded []byte
		if encoded, err = api.Marshal(key); err != nil {
			return false
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		if encoded, err = api.Marshal(value); err != nil {
			err = fmt.Errorf("failed to encode attribute %q: %w", key, err)
			return false
		}
		buf.Write(encoded)
		return true
	})
	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the attributes as JSON
func (a *Attributes) String() string {
	data, err := a.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Attributes(%v)", a.ToMap())
	}
	return string(data)
}
