// Package schema declares the node types docpager documents are built from.
package schema

import "github.com/dgallion1/docpager/internal/doctree"

// Type names.
const (
	Doc            = "doc"
	Paragraph      = "paragraph"
	Heading        = "heading"
	Blockquote     = "blockquote"
	CodeBlock      = "codeBlock"
	BulletList     = "bulletList"
	OrderedList    = "orderedList"
	ListItem       = "listItem"
	HorizontalRule = "horizontalRule"
	Text           = "text"
	HardBreak      = "hardBreak"

	Header     = "header"
	Footer     = "footer"
	PageBreak  = "pageBreak"
	PageNumber = "pageNumber"
)

const block = doctree.ContentBlock

func types() []*doctree.NodeType {
	return []*doctree.NodeType{
		{Name: Doc, Content: block},
		{Name: Paragraph, Group: block, Content: doctree.ContentInline},
		{Name: Heading, Group: block, Content: doctree.ContentInline, Attrs: map[string]any{"level": 1}},
		{Name: Blockquote, Group: block, Content: block},
		{Name: CodeBlock, Group: block, Content: doctree.ContentInline, Attrs: map[string]any{"language": ""}},
		{Name: BulletList, Group: block, Content: ListItem},
		{Name: OrderedList, Group: block, Content: ListItem, Attrs: map[string]any{"start": 1}},
		{Name: ListItem, Content: block},
		{Name: HorizontalRule, Group: block, Atom: true},
		{Name: Text, Inline: true, IsText: true},
		{Name: HardBreak, Inline: true, Atom: true},

		{Name: Header, Group: block, Atom: true, Attrs: map[string]any{"text": "Document Header"}},
		{Name: Footer, Group: block, Atom: true, Attrs: map[string]any{"page": 1}},
		{Name: PageBreak, Group: block, Atom: true},
		{Name: PageNumber, Group: block, Atom: true, Attrs: map[string]any{"page": 1}},
	}
}

// New returns the full docpager schema.
func New() *doctree.Schema {
	return doctree.NewSchema(types()...)
}

// Without returns a schema lacking the named types.
func Without(names ...string) *doctree.Schema {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	var keep []*doctree.NodeType
	for _, t := range types() {
		if !skip[t.Name] {
			keep = append(keep, t)
		}
	}
	return doctree.NewSchema(keep...)
}

// NewDoc wraps blocks in a document root.
func NewDoc(s *doctree.Schema, blocks ...*doctree.Node) *doctree.Node {
	return s.Node(Doc).Create(nil, blocks...)
}

// NewParagraph builds a paragraph holding text. Newlines become hard breaks.
func NewParagraph(s *doctree.Schema, text string) *doctree.Node {
	return s.Node(Paragraph).Create(nil, inline(s, text)...)
}

// NewHeading builds a heading of the given level.
func NewHeading(s *doctree.Schema, level int, text string) *doctree.Node {
	return s.Node(Heading).Create(map[string]any{"level": level}, inline(s, text)...)
}

// NewCodeBlock builds a code block. Newlines stay in the text.
func NewCodeBlock(s *doctree.Schema, language, code string) *doctree.Node {
	var content []*doctree.Node
	if code != "" {
		content = append(content, s.Text(code))
	}
	return s.Node(CodeBlock).Create(map[string]any{"language": language}, content...)
}

func inline(s *doctree.Schema, text string) []*doctree.Node {
	var out []*doctree.Node
	start := 0
	for i, r := range text {
		if r != '\n' {
			continue
		}
		if i > start {
			out = append(out, s.Text(text[start:i]))
		}
		out = append(out, s.Node(HardBreak).Create(nil))
		start = i + 1
	}
	if start < len(text) {
		out = append(out, s.Text(text[start:]))
	}
	return out
}
