// Package tree models an untyped configuration document (book.toml, or the
// config section of an mdbook render context) as a tagged-variant tree.
//
// Every accessor is total: asking for a value of the wrong shape yields a
// Malformed signal rather than a panic.
package tree

import (
	"fmt"
	"sort"
	"strconv"
)

type Kind int

const (
	KindNull = Kind(iota)
	KindString
	KindBool
	KindInteger
	KindFloat
	KindArray
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "<invalid>"
	}
}

// Value is one node of the tree. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
	arr  []Value
	tbl  Table
}

// Table maps keys to values. A nil Table is a valid empty table.
type Table map[string]Value

func String(s string) Value  { return Value{kind: KindString, s: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Integer(i int64) Value  { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Array(v ...Value) Value { return Value{kind: KindArray, arr: v} }
func TableValue(t Table) Value {
	if t == nil {
		t = Table{}
	}
	return Value{kind: KindTable, tbl: t}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsArray returns the elements of an array value. The returned slice is
// shared with v; use Clone before modifying it.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// AsTable returns the table of a table value. The returned map is shared
// with v; use Clone before modifying it.
func (v Value) AsTable() (Table, bool) {
	return v.tbl, v.kind == KindTable
}

// Clone returns a structurally independent copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	case KindTable:
		return Value{kind: KindTable, tbl: v.tbl.Clone()}
	default:
		return v
	}
}

// Clone returns a deep copy of t. Cloning a nil table yields an empty,
// non-nil table.
func (t Table) Clone() Table {
	ret := make(Table, len(t))
	for k, v := range t {
		ret[k] = v.Clone()
	}
	return ret
}

// Keys returns the keys of t in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.arr))
	case KindTable:
		return fmt.Sprintf("table{%d}", len(v.tbl))
	default:
		return "<invalid>"
	}
}
