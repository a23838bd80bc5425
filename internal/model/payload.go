package model

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Payload is an untyped JSON value (null, bool, number, string, array or
// object) as decoded from a log line. Numbers are held as json.Number so
// integers and floats stay distinguishable.
//
// Every accessor is total: a lookup on the wrong shape yields an absent
// Payload or a false ok flag, never a panic.
type Payload struct {
	value   any
	present bool
}

// NewPayload wraps a decoded JSON value.
func NewPayload(v any) Payload {
	return Payload{value: v, present: true}
}

// Present reports whether the value exists at all. A JSON null is present.
func (p Payload) Present() bool { return p.present }

// IsNull reports whether the value is absent or JSON null.
func (p Payload) IsNull() bool { return !p.present || p.value == nil }

// Raw returns the underlying decoded value.
func (p Payload) Raw() any { return p.value }

// Get returns the member named key when p is an object.
func (p Payload) Get(key string) Payload {
	obj, ok := p.value.(map[string]any)
	if !ok {
		return Payload{}
	}
	v, ok := obj[key]
	if !ok {
		return Payload{}
	}
	return NewPayload(v)
}

// AsString returns the value when it is a JSON string.
func (p Payload) AsString() (string, bool) {
	s, ok := p.value.(string)
	return s, ok
}

// AsUint returns the value when it is a non-negative integer literal.
// Floats (including 3.0 and 1e2), negatives and numeric strings are rejected.
func (p Payload) AsUint() (uint64, bool) {
	n, ok := p.value.(json.Number)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AsBool returns the value when it is a JSON boolean.
func (p Payload) AsBool() (bool, bool) {
	b, ok := p.value.(bool)
	return b, ok
}

// AsObject returns the members of an object.
func (p Payload) AsObject() (map[string]Payload, bool) {
	obj, ok := p.value.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]Payload, len(obj))
	for k, v := range obj {
		out[k] = NewPayload(v)
	}
	return out, true
}

// AsArray returns the elements of an array.
func (p Payload) AsArray() ([]Payload, bool) {
	arr, ok := p.value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Payload, len(arr))
	for i, v := range arr {
		out[i] = NewPayload(v)
	}
	return out, true
}

// Keys returns the sorted member names of an object, or nil.
func (p Payload) Keys() []string {
	obj, ok := p.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compact renders the value as single-line JSON.
func (p Payload) Compact() string {
	if !p.present {
		return ""
	}
	b, err := json.Marshal(p.value)
	if err != nil {
		return ""
	}
	return string(b)
}

// Pretty renders the value as indented JSON with object keys sorted.
func (p Payload) Pretty() string {
	if !p.present {
		return ""
	}
	b, err := json.MarshalIndent(p.value, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func (p Payload) optString(key string) *string {
	s, ok := p.Get(key).AsString()
	if !ok {
		return nil
	}
	return &s
}

func (p Payload) optUint(key string) *uint64 {
	n, ok := p.Get(key).AsUint()
	if !ok {
		return nil
	}
	return &n
}
