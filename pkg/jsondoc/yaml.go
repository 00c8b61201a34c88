package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedYAML is returned for YAML constructs without a JSON equivalent.
var ErrUnsupportedYAML = errors.New("unsupported yaml node")

// jsonNumber matches numeric literals that are already valid JSON numbers.
// They are kept verbatim so no magnitude or precision is lost.
var jsonNumber = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?$`)

// FromYAML converts a decoded YAML node into document values, keeping
// mapping key order. Aliases are resolved.
func FromYAML(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return FromYAML(node.Content[0])
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	case yaml.MappingNode:
		return mappingFromYAML(node)
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))

		for _, item := range node.Content {
			value, err := FromYAML(item)
			if err != nil {
				return nil, err
			}

			out = append(out, value)
		}

		return out, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return nil, fmt.Errorf("%w: kind %d at line %d", ErrUnsupportedYAML, node.Kind, node.Line)
	}
}

func mappingFromYAML(node *yaml.Node) (*Object, error) {
	obj := NewObject()

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar key at line %d", ErrUnsupportedYAML, keyNode.Line)
		}

		value, err := FromYAML(valueNode)
		if err != nil {
			return nil, err
		}

		obj.Set(keyNode.Value, value)
	}

	return obj, nil
}

func scalarFromYAML(node *yaml.Node) (any, error) {
	tag := node.ShortTag()
	if (tag == "!!int" || tag == "!!float") && jsonNumber.MatchString(node.Value) {
		return json.Number(node.Value), nil
	}

	switch tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool

		err := node.Decode(&b)
		if err != nil {
			return nil, fmt.Errorf("decode bool at line %d: %w", node.Line, err)
		}

		return b, nil
	case "!!int":
		var n int64

		err := node.Decode(&n)
		if err != nil {
			return nil, fmt.Errorf("decode int at line %d: %w", node.Line, err)
		}

		return json.Number(strconv.FormatInt(n, 10)), nil
	case "!!float":
		var f float64

		err := node.Decode(&f)
		if err != nil {
			return nil, fmt.Errorf("decode float at line %d: %w", node.Line, err)
		}

		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: %s at line %d", ErrUnsupportedYAML, node.Value, node.Line)
		}

		return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
