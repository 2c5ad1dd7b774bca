package runtime

import "fmt"

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// NumberValue is an IEEE-754 double, the only numeric representation.
type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// UndefinedValue is the no-value sentinel: lookups of unbound names and
// declarations without an initializer produce it.
type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

// Undefined is the shared sentinel instance.
var Undefined Value = UndefinedValue{}

// Number wraps a float64.
func Number(v float64) NumberValue {
	return NumberValue{Val: v}
}

// String wraps a Go string.
func String(v string) StringValue {
	return StringValue{Val: v}
}

// IsNumeric reports whether the value is a number.
func IsNumeric(v Value) bool {
	_, ok := v.(NumberValue)
	return ok
}

// IsString reports whether the value is a string.
func IsString(v Value) bool {
	_, ok := v.(StringValue)
	return ok
}
