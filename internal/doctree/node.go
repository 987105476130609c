package doctree

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Content expressions understood by NodeType.Allows.
const (
	ContentBlock  = "block"
	ContentInline = "inline"
)

// NodeType describes a kind of node. Types are compared by identity, so a
// node belongs to a schema through the *NodeType it carries.
type NodeType struct {
	Name string

	// Group is the content group this type belongs to ("block" for block
	// nodes, empty for inline and structural-only types).
	Group string

	// Content names what children are allowed: "block", "inline", another
	// type or group name, or empty for leaves.
	Content string

	Inline bool
	IsText bool

	// Atom nodes are treated as a single unit by editing commands.
	Atom bool

	// Attrs holds attribute defaults.
	Attrs map[string]any
}

// IsBlock reports whether nodes of this type occupy their own region.
func (t *NodeType) IsBlock() bool { return !t.Inline && !t.IsText }

// IsTextblock reports whether the type is a block holding inline content.
func (t *NodeType) IsTextblock() bool { return t.IsBlock() && t.Content == ContentInline }

// IsLeaf reports whether the type can never have children.
func (t *NodeType) IsLeaf() bool { return t.Content == "" }

// Allows reports whether child may appear directly inside a node of this type.
func (t *NodeType) Allows(child *NodeType) bool {
	switch t.Content {
	case "":
		return false
	case ContentBlock:
		return child.Group == ContentBlock
	case ContentInline:
		return child.Inline || child.IsText
	default:
		return child.Name == t.Content || child.Group == t.Content
	}
}

// Create builds a node of this type. Attribute defaults are copied first and
// then overridden by attrs.
func (t *NodeType) Create(attrs map[string]any, content ...*Node) *Node {
	merged := make(map[string]any, len(t.Attrs)+len(attrs))
	for k, v := range t.Attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	if len(merged) == 0 {
		merged = nil
	}
	return &Node{Type: t, Attrs: merged, Content: content}
}

// Node is an element of a document tree. Nodes are treated as immutable once
// they are part of a document; transactions build new trees instead of
// editing nodes in place.
type Node struct {
	Type    *NodeType
	Attrs   map[string]any
	Content []*Node
	Text    string // text nodes only
}

// NodeSize is the number of positions the node occupies in its parent:
// rune count for text, 1 for leaves, content size plus open and close
// tokens for everything else.
func (n *Node) NodeSize() int {
	if n.Type.IsText {
		return utf8.RuneCountInString(n.Text)
	}
	if n.Type.IsLeaf() {
		return 1
	}
	return 2 + n.ContentSize()
}

// ContentSize is the sum of the children's sizes. For a document root this
// is the document size: valid positions are [0, ContentSize()].
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.NodeSize()
	}
	return size
}

func (n *Node) IsBlock() bool     { return n.Type.IsBlock() }
func (n *Node) IsText() bool      { return n.Type.IsText }
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }
func (n *Node) IsLeaf() bool      { return n.Type.IsLeaf() }

// Attr returns the attribute value, falling back to the type default.
func (n *Node) Attr(name string) any {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return n.Type.Attrs[name]
}

// IntAttr returns an attribute as int. Values decoded from JSON arrive as
// float64 and values parsed from markup as strings; both are accepted.
func (n *Node) IntAttr(name string) int {
	switch v := n.Attr(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	}
	return 0
}

// StringAttr returns an attribute as string, or "" when absent.
func (n *Node) StringAttr(name string) string {
	switch v := n.Attr(name).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.Type.IsText {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Content {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Descendants walks every node below n in document order. pos is the
// absolute position of the node's start when n is a document root. Returning
// false from fn skips that node's children.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node) bool) {
	n.walk(0, fn)
}

func (n *Node) walk(start int, fn func(node *Node, pos int, parent *Node) bool) {
	pos := start
	for _, c := range n.Content {
		if fn(c, pos, n) && len(c.Content) > 0 {
			c.walk(pos+1, fn)
		}
		pos += c.NodeSize()
	}
}

// ResolveAfterTopLevel returns the position right after the top-level block
// that contains pos. A position already on a top-level boundary is returned
// unchanged.
func (n *Node) ResolveAfterTopLevel(pos int) (int, bool) {
	if pos < 0 || pos > n.ContentSize() {
		return 0, false
	}
	off := 0
	for _, c := range n.Content {
		if pos == off {
			return off, true
		}
		end := off + c.NodeSize()
		if pos < end {
			return end, true
		}
		off = end
	}
	return off, true
}

// withContent returns a shallow copy of n holding content.
func (n *Node) withContent(content []*Node) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Text: n.Text}
}

type jsonNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// MarshalJSON encodes the node as {"type","attrs","content","text"}.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{
		Type:    n.Type.Name,
		Attrs:   n.Attrs,
		Content: n.Content,
		Text:    n.Text,
	})
}
