package pathway

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Block is an AND-block: every course is required together.
type Block []string

// UnmarshalYAML accepts either a list of ids or a single separator-joined
// string such as "CIS 22A; CIS 22B".
func (b *Block) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*b = splitBlock(raw)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		var out Block
		for _, item := range raw {
			out = append(out, splitBlock(item)...)
		}
		*b = out
		return nil
	default:
		return fmt.Errorf("articulation block: expected string or list, got %s", describeNode(node))
	}
}

func splitBlock(raw string) Block {
	var out Block
	for _, part := range strings.Split(raw, idSeparator) {
		if id := NormalizeID(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ArticulationEntry maps one target requirement code to its OR-alternative
// AND-blocks of source courses.
type ArticulationEntry struct {
	Code      string   `json:"code" yaml:"code"`
	Receiving []string `json:"receiving,omitempty" yaml:"receiving,omitempty"`
	Blocks    []Block  `json:"blocks" yaml:"blocks"`
}

// RequirementCode returns Code, falling back to the receiving course list.
func (e ArticulationEntry) RequirementCode() string {
	if code := NormalizeID(e.Code); code != "" {
		return code
	}
	return NormalizeID(strings.Join(e.Receiving, " + "))
}

// Articulation holds one source institution's agreements with each target.
type Articulation struct {
	Source     string                         `json:"source" yaml:"source"`
	TermSystem string                         `json:"term_system,omitempty" yaml:"term_system,omitempty"`
	Targets    map[string][]ArticulationEntry `json:"targets" yaml:"targets"`
}

// TargetNames lists targets with agreements in declaration-independent order.
func (a Articulation) TargetNames() []string {
	return sortedKeys(a.Targets)
}

// ArticulationSet indexes agreements by source institution.
type ArticulationSet map[string]Articulation

// Source returns the agreements for a source institution.
func (s ArticulationSet) Source(name string) (Articulation, bool) {
	if art, ok := s[name]; ok {
		return art, true
	}
	for key, art := range s {
		if strings.EqualFold(key, name) {
			return art, true
		}
	}
	return Articulation{}, false
}

func describeNode(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
