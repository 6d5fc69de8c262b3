package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindSafeString
	KindArray
	KindObject
	KindFunction
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt, KindFloat:
		return "number"
	case KindString, KindSafeString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Function is a callable value
type Function func(args []Value) (Value, error)

// Value is a dynamically typed data value. The zero Value is undefined.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  *Array
	obj  *Object
	fn   Function
}

// Undefined returns the undefined value
func Undefined() Value { return Value{} }

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Safe returns a string value that must not be HTML escaped when rendered
func Safe(s string) Value { return Value{kind: KindSafeString, s: s} }

// ArrayOf returns an array value
func ArrayOf(a *Array) Value {
	if a == nil {
		a = NewArray()
	}
	return Value{kind: KindArray, arr: a}
}

// ObjectOf returns an object value
func ObjectOf(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Func returns a function value
func Func(fn Function) Value {
	if fn == nil {
		return Null()
	}
	return Value{kind: KindFunction, fn: fn}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool  { return v.kind == KindUndefined }
func (v Value) IsNull() bool       { return v.kind == KindNull }
func (v Value) IsBool() bool       { return v.kind == KindBool }
func (v Value) IsInt() bool        { return v.kind == KindInt }
func (v Value) IsFloat() bool      { return v.kind == KindFloat }
func (v Value) IsNumber() bool     { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsSafeString() bool { return v.kind == KindSafeString }
func (v Value) IsArray() bool      { return v.kind == KindArray }
func (v Value) IsObject() bool     { return v.kind == KindObject }
func (v Value) IsFunction() bool   { return v.kind == KindFunction }

// IsString reports whether the value is a plain or safe string
func (v Value) IsString() bool { return v.kind == KindString || v.kind == KindSafeString }

// Bool returns the boolean payload, false for other kinds
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns the integer payload. Floats are truncated.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// Float returns the numeric payload as a float64
func (v Value) Float() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

// Str returns the string payload, empty for non-string kinds
func (v Value) Str() string {
	if v.IsString() {
		return v.s
	}
	return ""
}

// Array returns the array payload or nil
func (v Value) Array() *Array {
	if v.kind == KindArray {
		return v.arr
	}
	return nil
}

// Object returns the object payload or nil
func (v Value) Object() *Object {
	if v.kind == KindObject {
		return v.obj
	}
	return nil
}

// Function returns the function payload or nil
func (v Value) Function() Function {
	if v.kind == KindFunction {
		return v.fn
	}
	return nil
}

// Call invokes a function value
func (v Value) Call(args ...Value) (Value, error) {
	if v.kind != KindFunction {
		return Undefined(), nil
	}
	return v.fn(args)
}

// Truthy reports the JavaScript truthiness of the value
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0 && !math.IsNaN(v.f)
	case KindString, KindSafeString:
		return v.s != ""
	case KindArray, KindObject, KindFunction:
		return true
	default:
		return false
	}
}

// IsEmpty reports whether the value counts as empty for conditional helpers.
// Empty arrays are empty, numbers never are, everything else is empty when falsy.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindArray:
		return v.arr.Len() == 0
	case KindInt, KindFloat:
		return false
	default:
		return !v.Truthy()
	}
}

// Len returns the number of elements of arrays and objects, or the length of strings
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return v.arr.Len()
	case KindObject:
		return v.obj.Len()
	case KindString, KindSafeString:
		return len(v.s)
	default:
		return 0
	}
}

// Equal compares two values. Scalars compare by value, containers and
// functions by identity. Integers and floats compare numerically.
func (v Value) Equal(o Value) bool {
	if v.IsNumber() && o.IsNumber() {
		if v.kind == KindInt && o.kind == KindInt {
			return v.i == o.i
		}
		return v.Float() == o.Float()
	}
	if v.IsString() && o.IsString() {
		return v.s == o.s
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindArray:
		return v.arr == o.arr
	case KindObject:
		return v.obj == o.obj
	default:
		return false
	}
}

// String returns a plain text rendering of the value
func (v Value) String() string {
	switch v.kind {
	case KindUndefined, KindNull, KindFunction:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString, KindSafeString:
		return v.s
	case KindArray:
		parts := make([]string, 0, v.arr.Len())
		for _, el := range v.arr.Values() {
			parts = append(parts, el.String())
		}
		return strings.Join(parts, ",")
	case KindObject:
		return "[object Object]"
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-7 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
