package value

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is returned by FromJSON for malformed input
var ErrInvalidJSON = errors.New("invalid json")

// FromJSON decodes a JSON document keeping object keys in document order
func FromJSON(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Undefined(), ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// FromJSONString is FromJSON for string input
func FromJSONString(s string) (Value, error) {
	return FromJSON([]byte(s))
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.String:
		return String(r.Str)
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return Int(i)
		}
		return Float(r.Num)
	case gjson.JSON:
		if r.IsArray() {
			arr := NewArray()
			r.ForEach(func(_, el gjson.Result) bool {
				arr.Append(fromResult(el))
				return true
			})
			return ArrayOf(arr)
		}
		obj := NewObject()
		r.ForEach(func(key, el gjson.Result) bool {
			obj.Set(key.String(), fromResult(el))
			return true
		})
		return ObjectOf(obj)
	default:
		return Undefined()
	}
}

// FromYAML decodes a YAML document keeping mapping keys in document order
func FromYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Undefined(), fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	return fromNode(&doc)
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, c := range n.Content {
			el, err := fromNode(c)
			if err != nil {
				return Undefined(), err
			}
			arr.Append(el)
		}
		return ArrayOf(arr), nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			el, err := fromNode(n.Content[i+1])
			if err != nil {
				return Undefined(), err
			}
			obj.Set(n.Content[i].Value, el)
		}
		return ObjectOf(obj), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return Undefined(), fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Undefined(), fmt.Errorf("failed to decode bool %q: %w", n.Value, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Undefined(), fmt.Errorf("failed to decode int %q: %w", n.Value, err)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Undefined(), fmt.Errorf("failed to decode float %q: %w", n.Value, err)
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}
