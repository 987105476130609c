package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Raw HTML blocks go
// through the HTML parser, so pagination markers exported as HTML come back
// as marker nodes.
type MarkdownParser struct {
	Schema *doctree.Schema
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{s: p.Schema, src: src}
	blocks := c.blocks(root)

	out := &Document{
		Title: titleFrom(filename),
		Doc:   schema.NewDoc(p.Schema, blocks...),
	}
	if c.firstH1 != "" && out.Title == "" {
		out.Title = c.firstH1
	}
	return out, nil
}

type mdConverter struct {
	s       *doctree.Schema
	src     []byte
	firstH1 string
}

func (c *mdConverter) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c *mdConverter) block(n ast.Node) []*doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		t := c.inlineText(node)
		if node.Level == 1 && c.firstH1 == "" {
			c.firstH1 = t
		}
		return []*doctree.Node{schema.NewHeading(c.s, node.Level, t)}
	case *ast.Paragraph, *ast.TextBlock:
		return []*doctree.Node{schema.NewParagraph(c.s, c.inlineText(n))}
	case *ast.FencedCodeBlock:
		return []*doctree.Node{schema.NewCodeBlock(c.s, string(node.Language(c.src)), c.lines(n))}
	case *ast.CodeBlock:
		return []*doctree.Node{schema.NewCodeBlock(c.s, "", c.lines(n))}
	case *ast.Blockquote:
		return []*doctree.Node{c.s.Node(schema.Blockquote).Create(nil, c.blocks(n)...)}
	case *ast.List:
		var items []*doctree.Node
		for it := n.FirstChild(); it != nil; it = it.NextSibling() {
			items = append(items, c.s.Node(schema.ListItem).Create(nil, c.blocks(it)...))
		}
		if node.IsOrdered() {
			return []*doctree.Node{c.s.Node(schema.OrderedList).Create(map[string]any{"start": node.Start}, items...)}
		}
		return []*doctree.Node{c.s.Node(schema.BulletList).Create(nil, items...)}
	case *ast.ThematicBreak:
		return []*doctree.Node{c.s.Node(schema.HorizontalRule).Create(nil)}
	case *ast.HTMLBlock:
		var buf bytes.Buffer
		buf.WriteString(c.lines(n))
		if node.HasClosure() {
			buf.Write(node.ClosureLine.Value(c.src))
		}
		nodes, err := htmlFragment(buf.String(), c.s)
		if err != nil {
			return nil
		}
		return nodes
	}
	if n.HasChildren() {
		return c.blocks(n)
	}
	return nil
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// inlineText flattens inline children. Hard line breaks become newlines,
// which NewParagraph turns into hardBreak nodes.
func (c *mdConverter) inlineText(n ast.Node) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			switch t := ch.(type) {
			case *ast.Text:
				buf.Write(t.Value(c.src))
				if t.HardLineBreak() {
					buf.WriteByte('\n')
				} else if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(c.src))
			case *ast.RawHTML:
			default:
				walk(ch)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
