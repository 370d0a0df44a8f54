package definition

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SelectorDef is the permissive tagged-scalar field declaration: a plain
// selector string, a complex map form, or a bare bool/int/null used as a
// literal default. Validation beyond "is this shape well-formed" is
// deferred to use time (the extractor), per the "reject only at use time
// when a required attribute is missing" design note.
type SelectorDef struct {
	Selector  string
	Attribute string
	Text      string
	Default   string
	Filters   []FilterDef
	Remove    string
	Optional  bool
	Case      map[string]string

	// Literal is set when the YAML node was a bare scalar with no
	// selector/text semantics (bool, int, null) — its string form is
	// used directly as a constant value.
	Literal    string
	IsLiteral  bool
}

// UnmarshalYAML implements the permissive decode: string -> Selector,
// map -> full struct, bool/int/null -> Literal.
func (s *SelectorDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			s.Selector = node.Value
		case "!!null":
			s.IsLiteral = true
			s.Literal = ""
		default:
			s.IsLiteral = true
			s.Literal = node.Value
		}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Selector  string            `yaml:"selector"`
			Attribute string            `yaml:"attribute"`
			Text      string            `yaml:"text"`
			Default   string            `yaml:"default"`
			Filters   []FilterDef       `yaml:"filters"`
			Remove    string            `yaml:"remove"`
			Optional  bool              `yaml:"optional"`
			Case      map[string]string `yaml:"case"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("definition: decode selector def: %w", err)
		}
		s.Selector = raw.Selector
		s.Attribute = raw.Attribute
		s.Text = raw.Text
		s.Default = raw.Default
		s.Filters = raw.Filters
		s.Remove = raw.Remove
		s.Optional = raw.Optional
		s.Case = raw.Case
		return nil
	default:
		return fmt.Errorf("definition: unsupported selector def node kind %v", node.Kind)
	}
}

// UnmarshalYAML decodes a filter declaration. Args may be a scalar, a
// sequence, or absent entirely (filters like "trim" take none).
func (f *FilterDef) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name string    `yaml:"name"`
		Args yaml.Node `yaml:"args"`
	}
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("definition: decode filter def: %w", err)
	}
	f.Name = raw.Name
	switch raw.Args.Kind {
	case 0:
		f.Args = nil
	case yaml.ScalarNode:
		f.Args = []string{raw.Args.Value}
	case yaml.SequenceNode:
		args := make([]string, 0, len(raw.Args.Content))
		for _, c := range raw.Args.Content {
			args = append(args, scalarToString(c))
		}
		f.Args = args
	default:
		f.Args = nil
	}
	return nil
}

func scalarToString(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}
