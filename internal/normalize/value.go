package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalizer converts raw backend payloads into canonical domain values.
// The zero value is ready to use.
type Normalizer struct {
	// Now stamps defaulted timestamps (default: time.Now).
	Now func() time.Time
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) nowString() string {
	return n.now().UTC().Format(time.RFC3339)
}

// Decode parses JSON keeping numbers as json.Number.
func Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// toValue accepts raw JSON bytes, an already decoded value, or any
// marshalable Go value, and returns the generic JSON form.
func toValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []byte:
		return Decode(v)
	case json.RawMessage:
		return Decode(v)
	case map[string]any, []any, string, bool, json.Number, float64:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode value: %w", err)
		}
		return Decode(data)
	}
}

// object is a decoded JSON object with alias-aware accessors.
type object map[string]any

func asObject(v any) (object, bool) {
	m, ok := v.(map[string]any)
	return object(m), ok
}

// has reports whether key is present, including an explicit null.
func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

// truthy reports whether the value at key would pass a boolean test:
// present, non-null, and not false, zero or the empty string.
func (o object) truthy(key string) bool {
	return truthy(o[key])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}

// obj returns the nested object at key.
func (o object) obj(key string) (object, bool) {
	return asObject(o[key])
}

// str returns the first alias whose value renders to a non-empty string.
// Numbers are rendered without exponent.
func (o object) str(keys ...string) string {
	for _, k := range keys {
		if s := stringify(o[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// num returns the first alias holding a number or a numeric string.
func (o object) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(o[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (o object) integer(key string) int {
	f, _ := o.num(key)
	return int(f)
}

func (o object) float(key string) float64 {
	f, _ := o.num(key)
	return f
}

func (o object) intPtr(key string) *int {
	f, ok := o.num(key)
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}

func (o object) int64Ptr(key string) *int64 {
	f, ok := o.num(key)
	if !ok {
		return nil
	}
	i := int64(f)
	return &i
}

func (o object) floatPtr(key string) *float64 {
	f, ok := o.num(key)
	if !ok {
		return nil
	}
	return &f
}

// strings returns a string slice, skipping non-string elements.
func (o object) strings(key string) []string {
	out := []string{}
	arr, _ := o[key].([]any)
	for _, v := range arr {
		if s := stringify(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// compact renders v for error messages.
func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
