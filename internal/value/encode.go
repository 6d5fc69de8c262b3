package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/tidwall/pretty"
)

// ToJSON encodes v as JSON keeping object key order. Undefined values and
// functions encode as null, as do non-finite floats.
func ToJSON(v Value) []byte {
	var buf bytes.Buffer
	writeJSON(&buf, v)
	return buf.Bytes()
}

// ToPrettyJSON is ToJSON indented with two spaces
func ToPrettyJSON(v Value) []byte {
	return pretty.PrettyOptions(ToJSON(v), &pretty.Options{Indent: "  ", SortKeys: false})
}

func writeJSON(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return
		}
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString, KindSafeString:
		writeJSONString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, el := range v.arr.Values() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, el)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		v.obj.Range(func(key string, el Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONString(buf, key)
			buf.WriteByte(':')
			writeJSON(buf, el)
			return true
		})
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// Marshal of a string cannot fail
	b, _ := json.Marshal(s)
	buf.Write(b)
}
