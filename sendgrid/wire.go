package sendgrid

import (
	"fmt"
	"math"
	"time"
)

// object is a decoded wire object together with its path from the root,
// which is used to name fields in decode errors.
type object struct {
	path string
	m    map[string]any
}

func newObject(path string, m map[string]any) object {
	return object{path: path, m: m}
}

// field returns the dotted path of key within o.
func (o object) field(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

// lookup returns the value stored under key. A null value counts as absent.
func (o object) lookup(key string) (any, bool) {
	v, ok := o.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (o object) require(key string) (any, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, &MissingFieldError{Field: o.field(key)}
	}
	return v, nil
}

func (o object) requiredString(key string) (string, error) {
	v, err := o.require(key)
	if err != nil {
		return "", err
	}
	return asString(o.field(key), v)
}

func (o object) optString(key string) (*string, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	s, err := asString(o.field(key), v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (o object) optBool(key string) (*bool, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, mismatch(o.field(key), "boolean", v)
	}
	return &b, nil
}

func (o object) requiredInt(key string) (int, error) {
	v, err := o.require(key)
	if err != nil {
		return 0, err
	}
	n, err := asInt(o.field(key), v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (o object) optInt(key string) (*int, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	n, err := asInt(o.field(key), v)
	if err != nil {
		return nil, err
	}
	i := int(n)
	return &i, nil
}

// optTime decodes a Unix epoch-seconds value.
func (o object) optTime(key string) (*time.Time, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	n, err := asInt(o.field(key), v)
	if err != nil {
		return nil, err
	}
	t := time.Unix(n, 0).UTC()
	return &t, nil
}

func (o object) optStrings(key string) ([]string, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	if ss, ok := v.([]string); ok {
		return append([]string{}, ss...), nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, mismatch(o.field(key), "array", v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := asString(fmt.Sprintf("%s[%d]", o.field(key), i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (o object) optStringMap(key string) (map[string]string, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	if sm, ok := v.(map[string]string); ok {
		out := make(map[string]string, len(sm))
		for k, s := range sm {
			out[k] = s
		}
		return out, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(o.field(key), "object", v)
	}
	out := make(map[string]string, len(m))
	for k, item := range m {
		s, err := asString(o.field(key)+"."+k, item)
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

// optAnyMap decodes an object whose values are carried through verbatim.
func (o object) optAnyMap(key string) (map[string]any, error) {
	v, ok := o.lookup(key)
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(o.field(key), "object", v)
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = item
	}
	return out, nil
}

func (o object) child(key string, required bool) (object, bool, error) {
	var (
		v  any
		ok bool
	)
	if required {
		var err error
		if v, err = o.require(key); err != nil {
			return object{}, false, err
		}
		ok = true
	} else {
		v, ok = o.lookup(key)
	}
	if !ok {
		return object{}, false, nil
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		return object{}, false, mismatch(o.field(key), "object", v)
	}
	return newObject(o.field(key), m), true, nil
}

// list decodes an array of objects with fn. A missing optional array and an
// empty array both yield nil, so nil and empty slices mean the same thing.
func list[T any](o object, key string, required bool, fn func(object) (T, error)) ([]T, error) {
	var (
		v  any
		ok bool
	)
	if required {
		var err error
		if v, err = o.require(key); err != nil {
			return nil, err
		}
	} else if v, ok = o.lookup(key); !ok {
		return nil, nil
	}

	items, isList := v.([]any)
	if !isList {
		return nil, mismatch(o.field(key), "array", v)
	}
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", o.field(key), i)
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, mismatch(path, "object", item)
		}
		decoded, err := fn(newObject(path, m))
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

// nested decodes an optional object with fn.
func nested[T any](o object, key string, fn func(object) (T, error)) (*T, error) {
	obj, ok, err := o.child(key, false)
	if err != nil || !ok {
		return nil, err
	}
	decoded, err := fn(obj)
	if err != nil {
		return nil, err
	}
	return &decoded, nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch(field, "string", v)
	}
	return s, nil
}

// int64er matches json.Number from both encoding/json and segmentio/encoding/json.
type int64er interface {
	Int64() (int64, error)
}

func asInt(field string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, mismatch(field, "integer", v)
		}
		return int64(n), nil
	case float32:
		return floatToInt(field, float64(n), v)
	case float64:
		return floatToInt(field, n, v)
	case int64er:
		i, err := n.Int64()
		if err != nil {
			return 0, mismatch(field, "integer", v)
		}
		return i, nil
	}
	return 0, mismatch(field, "integer", v)
}

func floatToInt(field string, f float64, v any) (int64, error) {
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, mismatch(field, "integer", v)
	}
	return int64(f), nil
}

func mismatch(field, expected string, v any) *TypeMismatchError {
	return &TypeMismatchError{Field: field, Expected: expected, Actual: kindOf(v)}
}

// kindOf names the JSON kind of a decoded value.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, int64er:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any, map[string]string:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Encode helpers. Optional values are only written when set.

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m map[string]any, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func putTime(m map[string]any, key string, v *time.Time) {
	if v != nil {
		m[key] = v.Unix()
	}
}

func putStrings(m map[string]any, key string, v []string) {
	if v == nil {
		return
	}
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	m[key] = out
}

func putStringMap(m map[string]any, key string, v map[string]string) {
	if v == nil {
		return
	}
	out := make(map[string]any, len(v))
	for k, s := range v {
		out[k] = s
	}
	m[key] = out
}

func putAnyMap(m map[string]any, key string, v map[string]any) {
	if v == nil {
		return
	}
	out := make(map[string]any, len(v))
	for k, item := range v {
		out[k] = item
	}
	m[key] = out
}

// encoder is implemented by every record type in this package.
type encoder interface {
	Encode() map[string]any
}

func putObject(m map[string]any, key string, v encoder) {
	m[key] = v.Encode()
}

func encodeList[T encoder](v []T) []any {
	out := make([]any, len(v))
	for i, item := range v {
		out[i] = item.Encode()
	}
	return out
}
