// Package values defines the runtime value model of Quill: a closed set of
// value kinds and explicit conversions between them.
package values

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindTime
	KindArray
	KindMap
	KindFunction
	KindObject
	KindUnit
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindDate:     "date",
	KindTime:     "time",
	KindArray:    "array",
	KindMap:      "map",
	KindFunction: "function",
	KindObject:   "object",
	KindUnit:     "unit",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a kind name ("number", "string", ...) back to its Kind.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindNull, false
}

// Value represents all values in the language.
type Value interface {
	Kind() Kind
	Inspect() string
}

// Null is the absent value.
type Null struct{}

func (Null) Kind() Kind      { return KindNull }
func (Null) Inspect() string { return "null" }

// Bool represents boolean values.
type Bool struct {
	Value bool
}

func (b Bool) Kind() Kind      { return KindBool }
func (b Bool) Inspect() string { return strconv.FormatBool(b.Value) }

// Number represents all numeric values.
type Number struct {
	Value float64
}

func (n Number) Kind() Kind      { return KindNumber }
func (n Number) Inspect() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// String represents string values.
type String struct {
	Value string
}

func (s String) Kind() Kind      { return KindString }
func (s String) Inspect() string { return s.Value }

// Date represents a calendar date with optional time.
type Date struct {
	Value time.Time
}

func (d Date) Kind() Kind { return KindDate }
func (d Date) Inspect() string {
	if d.Value.Hour() == 0 && d.Value.Minute() == 0 && d.Value.Second() == 0 {
		return d.Value.Format("2006-01-02")
	}
	return d.Value.Format(time.RFC3339)
}

// Time represents a time of day as the offset since midnight.
type Time struct {
	Value time.Duration
}

func (t Time) Kind() Kind { return KindTime }
func (t Time) Inspect() string {
	h := int(t.Value / time.Hour)
	m := int((t.Value % time.Hour) / time.Minute)
	s := int((t.Value % time.Minute) / time.Second)
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Array represents ordered collections.
type Array struct {
	Elements []Value
}

func (a *Array) Kind() Kind { return KindArray }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = inspectNested(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is an insertion-ordered string-keyed collection.
type Map struct {
	keys  []string
	pairs map[string]Value
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{pairs: make(map[string]Value)}
}

func (m *Map) Kind() Kind { return KindMap }
func (m *Map) Inspect() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = k + ": " + inspectNested(m.pairs[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set stores v under key, keeping the original position of existing keys.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.pairs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.pairs[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.pairs[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Function is a reference to a callable, by qualified name.
type Function struct {
	Name   string
	Params []string
}

func (f Function) Kind() Kind { return KindFunction }
func (f Function) Inspect() string {
	return "function " + f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// Object wraps a host value exposed to scripts.
type Object struct {
	TypeName string
	Value    any
}

func (o Object) Kind() Kind { return KindObject }
func (o Object) Inspect() string {
	if o.TypeName != "" {
		return "<" + o.TypeName + ">"
	}
	return fmt.Sprintf("<%T>", o.Value)
}

// Unit is a number with a unit of measure, e.g. 5 inches.
type Unit struct {
	Value float64
	Unit  string
}

func (u Unit) Kind() Kind { return KindUnit }
func (u Unit) Inspect() string {
	return strconv.FormatFloat(u.Value, 'g', -1, 64) + " " + u.Unit
}

func inspectNested(v Value) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(String); ok {
		return strconv.Quote(s.Value)
	}
	return v.Inspect()
}

// IsNull reports whether v is absent. A nil Value counts as null.
func IsNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// StringLength returns the byte length of v when it is a string, else 0.
func StringLength(v Value) int {
	if s, ok := v.(String); ok {
		return len(s.Value)
	}
	return 0
}

// KindOf returns the kind of v, treating nil as null.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
