package tree

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FromNative converts the generic representation produced by JSON, TOML or
// YAML decoders (maps, slices and scalars) into a Value.
//
// Numbers decoded with json.Decoder.UseNumber are kept as integers when they
// have no fractional part. Date and time values are carried in their textual
// form.
func FromNative(in any) (Value, error) {
	switch in := in.(type) {
	case nil:
		return Value{}, nil
	case string:
		return String(in), nil
	case bool:
		return Bool(in), nil
	case int:
		return Integer(int64(in)), nil
	case int32:
		return Integer(int64(in)), nil
	case int64:
		return Integer(in), nil
	case uint64:
		if in > math.MaxInt64 {
			return Float(float64(in)), nil
		}
		return Integer(int64(in)), nil
	case float32:
		return Float(float64(in)), nil
	case float64:
		return Float(in), nil
	case json.Number:
		if i, err := in.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := in.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", in.String(), err)
		}
		return Float(f), nil
	case []any:
		arr := make([]Value, 0, len(in))
		for i, e := range in {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, v)
		}
		return Array(arr...), nil
	case []map[string]any:
		arr := make([]Value, 0, len(in))
		for i, e := range in {
			t, err := TableFromNative(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, TableValue(t))
		}
		return Array(arr...), nil
	case map[string]any:
		t, err := TableFromNative(in)
		if err != nil {
			return Value{}, err
		}
		return TableValue(t), nil
	case encoding.TextMarshaler:
		b, err := in.MarshalText()
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	case fmt.Stringer:
		return String(in.String()), nil
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", in)
	}
}

// TableFromNative converts a decoded document root into a Table.
func TableFromNative(in map[string]any) (Table, error) {
	t := make(Table, len(in))
	for k, e := range in {
		v, err := FromNative(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		t[k] = v
	}
	return t, nil
}

// Native converts v back into plain maps, slices and scalars suitable for
// any of the standard encoders.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindArray:
		arr := make([]any, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Native()
		}
		return arr
	case KindTable:
		return v.tbl.Native()
	default:
		return nil
	}
}

// Native converts t into a map[string]any. Null entries are omitted.
func (t Table) Native() map[string]any {
	ret := make(map[string]any, len(t))
	for k, v := range t {
		if v.IsNull() {
			continue
		}
		ret[k] = v.Native()
	}
	return ret
}

// MarshalJSON encodes v the same way its native form would be encoded.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return nil, fmt.Errorf("cannot encode %s as JSON", strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	}
	return json.Marshal(v.Native())
}
