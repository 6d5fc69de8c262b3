package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ToJSON(t *testing.T) {
	t.Run("should keep key order", func(t *testing.T) {
		v, err := FromJSONString(`{"z": 1, "a": [true, null, 2.5, "q\"uote"], "m": {"k": "v"}}`)
		require.NoError(t, err)
		assert.Equal(t, `{"z":1,"a":[true,null,2.5,"q\"uote"],"m":{"k":"v"}}`, string(ToJSON(v)))
	})

	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "undefined", value: Undefined(), expected: "null"},
		{name: "function", value: Func(func([]Value) (Value, error) { return Undefined(), nil }), expected: "null"},
		{name: "nan", value: Float(math.NaN()), expected: "null"},
		{name: "infinity", value: Float(math.Inf(-1)), expected: "null"},
		{name: "large float", value: Float(1e21), expected: "1e+21"},
		{name: "safe string", value: Safe("<b>"), expected: `"<b>"`},
		{name: "empty array", value: ArrayOf(NewArray()), expected: "[]"},
		{name: "empty object", value: ObjectOf(NewObject()), expected: "{}"},
	}
	for _, tt := range tests {
		t.Run("should encode "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(ToJSON(tt.value)))
		})
	}

	t.Run("should round trip through FromJSON", func(t *testing.T) {
		in := `{"b":[1,{"c":"d"}],"a":-3}`
		v, err := FromJSONString(in)
		require.NoError(t, err)
		back, err := FromJSON(ToJSON(v))
		require.NoError(t, err)
		assert.Equal(t, in, string(ToJSON(back)))
	})
}

func Test_ToPrettyJSON(t *testing.T) {
	v, err := FromJSONString(`{"s": "x", "a": [1, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"s\": \"x\",\n  \"a\": [\n    1,\n    2\n  ]\n}\n", string(ToPrettyJSON(v)))
}
