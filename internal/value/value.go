// internal/value/value.go
package value

import (
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	List
	Object
)

var kindNames = map[Kind]string{
	Null:   "null",
	Bool:   "bool",
	Number: "number",
	String: "string",
	List:   "list",
	Object: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is the runtime representation of dialect values. Scalars wrap cty
// values so arithmetic and comparison work on exact decimal numbers; lists
// and objects are kept outside cty because attribute order is significant
// in generated output and cty object types sort their attributes.
type Value struct {
	kind   Kind
	scalar cty.Value
	list   []Value
	fields *Fields
}

// NullVal returns the null value. The zero Value is also null.
func NullVal() Value {
	return Value{kind: Null}
}

func BoolVal(b bool) Value {
	return Value{kind: Bool, scalar: cty.BoolVal(b)}
}

func StringVal(s string) Value {
	return Value{kind: String, scalar: cty.StringVal(s)}
}

// NumberVal wraps a cty number.
func NumberVal(n cty.Value) Value {
	return Value{kind: Number, scalar: n}
}

func IntVal(i int64) Value {
	return Value{kind: Number, scalar: cty.NumberIntVal(i)}
}

func FloatVal(f float64) Value {
	return Value{kind: Number, scalar: cty.NumberFloatVal(f)}
}

// ParseNumberVal parses a decimal literal into a number value.
func ParseNumberVal(s string) (Value, error) {
	n, err := cty.ParseNumberVal(s)
	if err != nil {
		return Value{}, err
	}
	return NumberVal(n), nil
}

func ListVal(elems []Value) Value {
	return Value{kind: List, list: elems}
}

func ObjectVal(fields *Fields) Value {
	if fields == nil {
		fields = NewFields()
	}
	return Value{kind: Object, fields: fields}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// AsBool returns the boolean payload; it panics on other kinds.
func (v Value) AsBool() bool {
	return v.scalar.True()
}

// AsString returns the string payload; it panics on other kinds.
func (v Value) AsString() string {
	return v.scalar.AsString()
}

// AsNumber returns the underlying cty number; it panics on other kinds.
func (v Value) AsNumber() cty.Value {
	return v.scalar
}

// Elems returns the list payload. The slice is shared, not copied.
func (v Value) Elems() []Value {
	return v.list
}

// AsFields returns the object payload. The fields are shared, not copied.
func (v Value) AsFields() *Fields {
	return v.fields
}

// Truthy reports the dialect's truth rule: null, false, zero, the empty
// string, and empty collections are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Bool:
		return v.scalar.True()
	case Number:
		return v.scalar.AsBigFloat().Sign() != 0
	case String:
		return v.scalar.AsString() != ""
	case List:
		return len(v.list) > 0
	case Object:
		return v.fields.Len() > 0
	}
	return false
}

// Equal reports deep equality. Objects compare without regard to field
// order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool, Number, String:
		return v.scalar.Equals(o.scalar).True()
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.fields.Len() != o.fields.Len() {
			return false
		}
		for _, name := range v.fields.Names() {
			a, _ := v.fields.Get(name)
			b, ok := o.fields.Get(name)
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders the value the way interpolation and generated output show
// it: null, true/false, exact decimal numbers, and bare strings. List and
// object forms exist for diagnostics only.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		if v.scalar.True() {
			return "true"
		}
		return "false"
	case Number:
		return v.scalar.AsBigFloat().Text('f', -1)
	case String:
		return v.scalar.AsString()
	case List:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.quotedText()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		parts := make([]string, 0, v.fields.Len())
		for _, name := range v.fields.Names() {
			f, _ := v.fields.Get(name)
			parts = append(parts, name+" = "+f.quotedText())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

func (v Value) quotedText() string {
	if v.kind == String {
		return strconv.Quote(v.scalar.AsString())
	}
	return v.Text()
}
