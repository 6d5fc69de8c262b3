package value

import (
	"fmt"
	"reflect"
	"sort"
)

// FromGo converts plain Go data into a Value.
//
// Maps with string keys become objects with keys sorted, since Go maps carry
// no order. Slices and arrays become arrays. Values, *Object and *Array are
// passed through unchanged.
func FromGo(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Object:
		return ObjectOf(t)
	case *Array:
		return ArrayOf(t)
	case Function:
		return Func(t)
	case func(args []Value) (Value, error):
		return Func(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case []any:
		arr := NewArray()
		for _, el := range t {
			arr.Append(FromGo(el))
		}
		return ArrayOf(arr)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromGo(t[k]))
		}
		return ObjectOf(obj)
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		arr := NewArray()
		for i := 0; i < rv.Len(); i++ {
			arr.Append(FromGo(rv.Index(i).Interface()))
		}
		return ArrayOf(arr)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return String(fmt.Sprint(rv.Interface()))
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromGo(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()))
		}
		return ObjectOf(obj)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Invalid:
		return Null()
	default:
		return String(fmt.Sprint(rv.Interface()))
	}
}

// ToGo converts a Value into plain Go data: map[string]any, []any, string,
// int64, float64, bool or nil. Functions convert to nil.
func ToGo(v Value) any {
	switch v.Kind() {
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int()
	case KindFloat:
		return v.Float()
	case KindString, KindSafeString:
		return v.Str()
	case KindArray:
		items := v.Array().Values()
		out := make([]any, len(items))
		for i, el := range items {
			out[i] = ToGo(el)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Object().Len())
		v.Object().Range(func(key string, el Value) bool {
			out[key] = ToGo(el)
			return true
		})
		return out
	default:
		return nil
	}
}
