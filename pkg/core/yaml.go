package core

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Vec3 and Quat encode as flow sequences ([x, y, z] and [x, y, z, w]) so
// saved scenes and config files stay compact and readable.

func flowSeq(values ...float64) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(v, 'g', -1, 64),
		})
	}
	return node
}

func decodeSeq(value *yaml.Node, kind string, n int) ([]float64, error) {
	var values []float64
	if err := value.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if len(values) != n {
		return nil, fmt.Errorf("decode %s: expected %d components, got %d (line %d)", kind, n, len(values), value.Line)
	}
	return values, nil
}

// MarshalYAML implements yaml.Marshaler
func (v Vec3) MarshalYAML() (interface{}, error) {
	return flowSeq(v.X, v.Y, v.Z), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	c, err := decodeSeq(value, "vec3", 3)
	if err != nil {
		return err
	}
	*v = Vec3{c[0], c[1], c[2]}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (q Quat) MarshalYAML() (interface{}, error) {
	return flowSeq(q.X, q.Y, q.Z, q.W), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (q *Quat) UnmarshalYAML(value *yaml.Node) error {
	c, err := decodeSeq(value, "quat", 4)
	if err != nil {
		return err
	}
	*q = Quat{c[0], c[1], c[2], c[3]}
	return nil
}
