package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes p as [first, second].
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{int(p.First), int(p.Second)})
}

// UnmarshalJSON decodes a [first, second] array.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	return p.set(raw)
}

// MarshalYAML encodes p as a flow sequence [first, second].
func (p Pair) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []Type{p.First, p.Second} {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: fmt.Sprint(int(v)),
		})
	}
	return node, nil
}

// UnmarshalYAML decodes a [first, second] sequence.
func (p *Pair) UnmarshalYAML(value *yaml.Node) error {
	var raw []int
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("pair at line %d: %w", value.Line, err)
	}
	return p.set(raw)
}

func (p *Pair) set(raw []int) error {
	if len(raw) != 2 {
		return fmt.Errorf("pair must have exactly 2 entries, got %d", len(raw))
	}
	p.First, p.Second = Type(raw[0]), Type(raw[1])
	return nil
}
