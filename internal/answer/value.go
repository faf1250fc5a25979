package answer

import (
	"encoding/json"
	"slices"
	"strconv"
)

// Type identifies which variant a Value holds.
type Type int

const (
	TypeNull Type = iota
	TypeString
	TypeStrings
	TypeNumber
	TypeBool
)

// String returns the wire name of the type.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeStrings:
		return "string[]"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	default:
		return "null"
	}
}

// Value is a single answer: a string, a string array, a number, a boolean,
// or null. The zero Value is null.
type Value struct {
	typ  Type
	str  string
	strs []string
	num  float64
	b    bool
}

// Null returns the "no answer yet" value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{typ: TypeString, str: s} }

// Strings returns a string-array value. A nil slice is stored as empty.
func Strings(ss []string) Value {
	if ss == nil {
		ss = []string{}
	}
	return Value{typ: TypeStrings, strs: slices.Clone(ss)}
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{typ: TypeNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }

// Type reports the variant held by v.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether v is the null sentinel.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.typ == TypeString }

// AsStrings returns a copy of the string array held by v.
func (v Value) AsStrings() ([]string, bool) {
	if v.typ != TypeStrings {
		return nil, false
	}
	return slices.Clone(v.strs), true
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.typ == TypeNumber }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

// IsPresent reports whether v counts as answered. Null, the empty string and
// the empty array are not present; every other value, including 0 and false,
// is.
func (v Value) IsPresent() bool {
	switch v.typ {
	case TypeNull:
		return false
	case TypeString:
		return v.str != ""
	case TypeStrings:
		return len(v.strs) > 0
	default:
		return true
	}
}

// Equal reports strict equality: same variant and same content.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.str == o.str
	case TypeStrings:
		return slices.Equal(v.strs, o.strs)
	case TypeNumber:
		return v.num == o.num
	case TypeBool:
		return v.b == o.b
	default:
		return true
	}
}

// Contains reports whether v is a string array holding x. Only string
// elements can match.
func (v Value) Contains(x Value) bool {
	if v.typ != TypeStrings || x.typ != TypeString {
		return false
	}
	return slices.Contains(v.strs, x.str)
}

// String renders v for logs and terminal display.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeStrings:
		b, _ := json.Marshal(v.strs)
		return string(b)
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// MarshalJSON encodes v in its wire shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeString:
		return json.Marshal(v.str)
	case TypeStrings:
		return json.Marshal(v.strs)
	case TypeNumber:
		return json.Marshal(v.num)
	case TypeBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any syntactically valid JSON. Shapes outside the
// answer wire format (objects, mixed arrays) decode to null instead of
// failing, so one corrupt answer never poisons a whole read.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*v = Null()
		return nil
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a decoded JSON or YAML scalar into a Value. Unsupported
// shapes become null.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Null()
		}
		return Number(f)
	case []string:
		return Strings(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return Null()
			}
			out = append(out, s)
		}
		return Strings(out)
	default:
		return Null()
	}
}

// Parse decodes raw wire input. Malformed input yields null, never an error.
func Parse(raw []byte) Value {
	if len(raw) == 0 {
		return Null()
	}
	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return Null()
	}
	return v
}
