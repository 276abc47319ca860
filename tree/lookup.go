package tree

import (
	"strings"
)

// Presence reports the outcome of a typed lookup.
type Presence int

const (
	Present = Presence(iota)
	Missing
	Malformed // present, but not of the requested shape
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Missing:
		return "missing"
	case Malformed:
		return "malformed"
	default:
		return "<invalid>"
	}
}

// Get follows a dotted path ("output.i18n.translations") through nested
// tables. A path that runs into a non-table value before its last segment is
// reported as missing; a null leaf is reported as missing too.
func (t Table) Get(path string) (Value, bool) {
	cur := t
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		v, ok := cur[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(segs)-1 {
			return v, !v.IsNull()
		}
		cur, ok = v.AsTable()
		if !ok {
			return Value{}, false
		}
	}
	return Value{}, false
}

func (t Table) StringAt(path string) (string, Presence) {
	v, ok := t.Get(path)
	if !ok {
		return "", Missing
	}
	s, ok := v.AsString()
	if !ok {
		return "", Malformed
	}
	return s, Present
}

func (t Table) BoolAt(path string) (bool, Presence) {
	v, ok := t.Get(path)
	if !ok {
		return false, Missing
	}
	b, ok := v.AsBool()
	if !ok {
		return false, Malformed
	}
	return b, Present
}

func (t Table) TableAt(path string) (Table, Presence) {
	v, ok := t.Get(path)
	if !ok {
		return nil, Missing
	}
	tbl, ok := v.AsTable()
	if !ok {
		return nil, Malformed
	}
	return tbl, Present
}

func (t Table) ArrayAt(path string) ([]Value, Presence) {
	v, ok := t.Get(path)
	if !ok {
		return nil, Missing
	}
	arr, ok := v.AsArray()
	if !ok {
		return nil, Malformed
	}
	return arr, Present
}

// StringsAt returns the string elements of the array at path. Elements of
// other kinds are skipped. A present array with no string elements yields an
// empty, non-nil slice so that callers can tell it apart from a missing one.
func (t Table) StringsAt(path string) ([]string, Presence) {
	arr, p := t.ArrayAt(path)
	if p != Present {
		return nil, p
	}
	ret := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.AsString(); ok {
			ret = append(ret, s)
		}
	}
	return ret, Present
}
