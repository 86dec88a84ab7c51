package codec

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// floatNode is untagged so integral values stay readable; they decode into
// float64 fields all the same
func floatNode(v float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}

func flowFloats(values ...float64) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		n.Content = append(n.Content, floatNode(v))
	}
	return n
}

// put appends a key/value pair to a mapping node
func put(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

// mappingFields indexes the values of a mapping node by key
func mappingFields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping at line %d", ErrMalformed, n.Line)
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out, nil
}

// requireFields returns the nodes for keys, failing on the first missing key
func requireFields(n *yaml.Node, keys ...string) (map[string]*yaml.Node, error) {
	fields, err := mappingFields(n)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("%w: missing %q at line %d", ErrMalformed, k, n.Line)
		}
	}
	return fields, nil
}

func decodeString(n *yaml.Node) (string, error) {
	var s string
	if err := n.Decode(&s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

func decodeStrings(n *yaml.Node) ([]string, error) {
	var s []string
	if err := n.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

func decodeFloats(n *yaml.Node, size int) ([]float64, error) {
	var values []float64
	if err := n.Decode(&values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(values) != size {
		return nil, fmt.Errorf("%w: expected %d values, got %d at line %d", ErrMalformed, size, len(values), n.Line)
	}
	return values, nil
}

func stringSequence(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		n.Content = append(n.Content, scalar(v))
	}
	return n
}
