package event

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// asNumber reports the numeric value of v. Integral values are also
// returned as int64 with exact set.
func asNumber(v any) (f float64, i int64, exact bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), int64(n), true, true
	case int8:
		return float64(n), int64(n), true, true
	case int16:
		return float64(n), int64(n), true, true
	case int32:
		return float64(n), int64(n), true, true
	case int64:
		return float64(n), n, true, true
	case uint:
		return float64(n), int64(n), n <= math.MaxInt64, true
	case uint8:
		return float64(n), int64(n), true, true
	case uint16:
		return float64(n), int64(n), true, true
	case uint32:
		return float64(n), int64(n), true, true
	case uint64:
		return float64(n), int64(n), n <= math.MaxInt64, true
	case float32:
		return floatNumber(float64(n))
	case float64:
		return floatNumber(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return float64(i), i, true, true
		}
		if f, err := n.Float64(); err == nil {
			return floatNumber(f)
		}
	}
	return 0, 0, false, false
}

func floatNumber(f float64) (float64, int64, bool, bool) {
	if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
		return f, int64(f), true, true
	}
	return f, 0, false, true
}

func isNumber(v any) bool {
	_, _, _, ok := asNumber(v)
	return ok
}

func numbersEqual(a, b any) bool {
	fa, ia, exactA, _ := asNumber(a)
	fb, ib, exactB, _ := asNumber(b)
	if exactA && exactB {
		return ia == ib
	}
	return fa == fb
}

// normalize turns decoded json.Number values into int64 or float64, recursively
func normalize(v any) any {
	switch value := v.(type) {
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case map[string]any:
		for k, item := range value {
			value[k] = normalize(item)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = normalize(item)
		}
		return value
	}
	return v
}

// cloneValue deep copies the JSON-like containers of v
func cloneValue(v any) any {
	switch value := v.(type) {
	case *Attributes:
		return value.Clone()
	case map[string]any:
		result := make(map[string]any, len(value))
		for k, item := range value {
			result[k] = cloneValue(item)
		}
		return result
	case []any:
		result := make([]any, len(value))
		for i, item := range value {
			result[i] = cloneValue(item)
		}
		return result
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		result := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(result, rv)
		return result.Interface()
	}
	return v
}

// genericContainer returns the []any or map[string]any view of a slice,
// array or string-keyed map. Byte slices and nil containers are left out.
func genericContainer(v any) (any, bool) {
	switch v.(type) {
	case []any, map[string]any:
		return v, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		fallthrough
	case reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m, true
	}
	return nil, false
}

func isPlainContainer(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

func isAttributesOrMap(v any) bool {
	if _, ok := v.(*Attributes); ok {
		return true
	}
	generic, _ := genericContainer(v)
	_, ok := generic.(map[string]any)
	return ok
}

func toPlainMap(v any) map[string]any {
	if attrs, ok := v.(*Attributes); ok {
		return attrs.ToMap()
	}
	generic, _ := genericContainer(v)
	m, _ := generic.(map[string]any)
	return m
}

// valueOptions make decoded and literal JSON values comparable: numbers are
// compared by value whatever their Go type, ordered attributes by content
// regardless of key order, typed slices and maps by their elements.
func valueOptions() cmp.Options {
	return cmp.Options{
		cmp.FilterValues(func(x, y any) bool {
			return isNumber(x) && isNumber(y)
		}, cmp.Comparer(numbersEqual)),
		cmp.FilterValues(func(x, y any) bool {
			_, xAttrs := x.(*Attributes)
			_, yAttrs := y.(*Attributes)
			return isAttributesOrMap(x) && isAttributesOrMap(y) && (xAttrs || yAttrs)
		}, cmp.Comparer(func(x, y any) bool {
			return valuesEqual(toPlainMap(x), toPlainMap(y))
		})),
		cmp.FilterValues(func(x, y any) bool {
			_, xContainer := genericContainer(x)
			_, yContainer := genericContainer(y)
			return xContainer && yContainer && !(isPlainContainer(x) && isPlainContainer(y))
		}, cmp.Comparer(func(x, y any) bool {
			gx, _ := genericContainer(x)
			gy, _ := genericContainer(y)
			return valuesEqual(gx, gy)
		})),
	}
}

// valuesEqual is deep value equality over JSON-like values
func valuesEqual(a, b any) bool {
	return cmp.Equal(a, b, valueOptions())
}

// EqualValues reports whether two attribute values are deeply equal,
// numbers compared by value
func EqualValues(a, b any) bool {
	return valuesEqual(a, b)
}
