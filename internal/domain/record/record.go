// Package record models a product row as an ordered mapping from column
// name to a closed set of value variants. Catalogs are schema-less from the
// service's perspective, so the container preserves discovery order and
// never exposes an open `any` shape to the rest of the pipeline.
package record

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the value variants a column may hold.
type Kind int

const (
	// KindString holds a text value.
	KindString Kind = iota
	// KindNumber holds a float64 value.
	KindNumber
	// KindBool holds a boolean value.
	KindBool
	// KindObject holds a nested key/value mapping (the attribute bag shape).
	KindObject
)

// Value is a tagged union over the closed variant set.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  map[string]Value
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Object creates a nested object value.
func Object(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload (valid for KindString).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (valid for KindNumber).
func (v Value) Num() float64 { return v.num }

// BoolVal returns the boolean payload (valid for KindBool).
func (v Value) BoolVal() bool { return v.b }

// Obj returns the nested mapping (valid for KindObject).
func (v Value) Obj() map[string]Value { return v.obj }

// IsEmpty reports whether the value carries no information: an empty or
// whitespace-only string, or an empty object. Numbers and booleans are
// never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindObject:
		return len(v.obj) == 0
	default:
		return false
	}
}

// Text renders the value as display text.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject:
		data, err := json.Marshal(v.toAny())
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

func (v Value) toAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, nested := range v.obj {
			m[k] = nested.toAny()
		}
		return m
	}
	return nil
}

// FromAny converts a decoded JSON / driver value into a Value.
// Unsupported shapes (arrays, nil) are rendered through JSON as strings so
// no column is silently lost. Returns ok=false only for nil.
func FromAny(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Value{}, false
	case string:
		return String(t), true
	case bool:
		return Bool(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int32:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String()), true
		}
		return Number(f), true
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, nested := range t {
			if nv, ok := FromAny(nested); ok {
				obj[k] = nv
			}
		}
		return Object(obj), true
	case []byte:
		return String(string(t)), true
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return Value{}, false
		}
		return String(string(data)), true
	}
}

// Record is a product row: column names in discovery order mapped to values.
type Record struct {
	keys []string
	vals map[string]Value
}

// New creates an empty record.
func New() Record {
	return Record{vals: make(map[string]Value)}
}

// FromMap builds a record from a decoded JSON object, with keys sorted for
// deterministic iteration (JSON objects carry no order of their own).
func FromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := New()
	for _, k := range keys {
		if v, ok := FromAny(m[k]); ok {
			r.Set(k, v)
		}
	}
	return r
}

// Set stores a value, appending the key on first sight.
func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, exists := r.vals[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Get returns the value for a column.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// GetText returns the column rendered as text, or "" when absent.
func (r Record) GetText(key string) string {
	if v, ok := r.vals[key]; ok {
		return v.Text()
	}
	return ""
}

// Keys returns column names in discovery order.
func (r Record) Keys() []string { return r.keys }

// Len returns the number of columns.
func (r Record) Len() int { return len(r.keys) }

// HasFold reports whether a column exists, compared case-insensitively,
// and returns its stored casing.
func (r Record) HasFold(key string) (string, bool) {
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

// Serialize renders the record as "key: value" pairs joined by "; ",
// in column discovery order. Used for relevance scoring and comparison
// target alignment.
func (r Record) Serialize() string {
	var sb strings.Builder
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(r.vals[k].Text())
	}
	return sb.String()
}

// MarshalJSON renders the record as a JSON object in key discovery order.
func (r Record) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.vals[k].toAny())
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
