package mergeengine

import (
	"gopkg.in/yaml.v3"

	"github.com/jinvcs/jin/internal/jin/jinerr"
	"github.com/jinvcs/jin/internal/jin/mergeval"
)

// parseYAML decodes data via yaml.Node so mapping key order survives
// (a bare Unmarshal into map[string]interface{} would not), then
// converts the node tree into the common mergeval.Value.
func parseYAML(data []byte) (mergeval.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return mergeval.Value{}, jinerr.Wrap(jinerr.KindParse, "parse yaml", err)
	}
	if len(doc.Content) == 0 {
		return mergeval.Null(), nil
	}
	return yamlNodeToValue(doc.Content[0])
}

func yamlNodeToValue(n *yaml.Node) (mergeval.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		obj := mergeval.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			val, err := yamlNodeToValue(valNode)
			if err != nil {
				return mergeval.Value{}, err
			}
			obj.Set(keyNode.Value, val)
		}
		return mergeval.Obj(obj), nil
	case yaml.SequenceNode:
		items := make([]mergeval.Value, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := yamlNodeToValue(c)
			if err != nil {
				return mergeval.Value{}, err
			}
			items = append(items, val)
		}
		return mergeval.Value{Kind: mergeval.KindArray, Array: items}, nil
	case yaml.ScalarNode:
		return yamlScalarToValue(n), nil
	case yaml.AliasNode:
		return yamlNodeToValue(n.Alias)
	default:
		return mergeval.Null(), nil
	}
}

func yamlScalarToValue(n *yaml.Node) mergeval.Value {
	switch n.Tag {
	case "!!null":
		return mergeval.Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return mergeval.Bool(b)
		}
	case "!!int", "!!float":
		return mergeval.Number(n.Value)
	}
	return mergeval.String(n.Value)
}

// serializeYAML renders v back to YAML, preserving object key order via
// an explicit node tree.
func serializeYAML(v mergeval.Value) ([]byte, error) {
	node := valueToYAMLNode(v)
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, jinerr.Wrap(jinerr.KindIO, "serialize yaml", err)
	}
	return data, nil
}

func valueToYAMLNode(v mergeval.Value) *yaml.Node {
	switch v.Kind {
	case mergeval.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case mergeval.KindBool:
		s := "false"
		if v.Bool {
			s = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}
	case mergeval.KindNumber:
		// Untagged plain scalar: the number's own text decides int vs. float.
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.Number}
	case mergeval.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String}
	case mergeval.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Array {
			n.Content = append(n.Content, valueToYAMLNode(e))
		}
		return n
	case mergeval.KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Object.Keys() {
			val, _ := v.Object.Get(k)
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valueToYAMLNode(val))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
