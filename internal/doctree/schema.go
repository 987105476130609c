package doctree

import (
	"encoding/json"
	"fmt"
)

// Schema is a registry of node types looked up by name.
type Schema struct {
	types map[string]*NodeType
	order []*NodeType
}

// NewSchema registers types in order. A later type with the same name
// replaces an earlier one.
func NewSchema(types ...*NodeType) *Schema {
	s := &Schema{types: make(map[string]*NodeType, len(types))}
	for _, t := range types {
		if _, dup := s.types[t.Name]; !dup {
			s.order = append(s.order, t)
		} else {
			for i, o := range s.order {
				if o.Name == t.Name {
					s.order[i] = t
				}
			}
		}
		s.types[t.Name] = t
	}
	return s
}

// Node returns the type registered under name, or nil.
func (s *Schema) Node(name string) *NodeType {
	if s == nil {
		return nil
	}
	return s.types[name]
}

// Types returns the registered types in registration order.
func (s *Schema) Types() []*NodeType {
	out := make([]*NodeType, len(s.order))
	copy(out, s.order)
	return out
}

// NewNode creates a node of the named type.
func (s *Schema) NewNode(name string, attrs map[string]any, content ...*Node) (*Node, error) {
	t := s.Node(name)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, name)
	}
	return t.Create(attrs, content...), nil
}

// Text creates a text node. It returns nil when the schema has no text type.
func (s *Schema) Text(text string) *Node {
	t := s.Node("text")
	if t == nil {
		return nil
	}
	return &Node{Type: t, Text: text}
}

type rawNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs"`
	Content []rawNode      `json:"content"`
	Text    string         `json:"text"`
}

// NodeFromJSON decodes a node previously encoded with MarshalJSON.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return s.fromRaw(raw)
}

// NodesFromJSON decodes a JSON array of nodes.
func (s *Schema) NodesFromJSON(data []byte) ([]*Node, error) {
	var raws []rawNode
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	out := make([]*Node, 0, len(raws))
	for _, r := range raws {
		n, err := s.fromRaw(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Schema) fromRaw(raw rawNode) (*Node, error) {
	t := s.Node(raw.Type)
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, raw.Type)
	}
	if t.IsText {
		return &Node{Type: t, Text: raw.Text}, nil
	}
	content := make([]*Node, 0, len(raw.Content))
	for _, c := range raw.Content {
		child, err := s.fromRaw(c)
		if err != nil {
			return nil, err
		}
		if !t.Allows(child.Type) {
			return nil, fmt.Errorf("%w: %s in %s", ErrContentNotAllowed, child.Type.Name, t.Name)
		}
		content = append(content, child)
	}
	return t.Create(raw.Attrs, content...), nil
}
