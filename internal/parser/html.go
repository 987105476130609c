package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker markup shared with the HTML exporter.
const (
	ClassPageBreak  = "page-break"
	ClassPageNumber = "page-number"
	ClassDocHeader  = "doc-header"
	ClassDocFooter  = "doc-footer"
	AttrPage        = "data-page"
)

// HTMLParser handles HTML files.
type HTMLParser struct {
	Schema *doctree.Schema
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &Document{Title: titleFrom(filename)}
	if title := findTitle(root); title != "" {
		out.Title = title
	}

	start := root
	if body := findBody(root); body != nil {
		start = body
	}
	c := &htmlConverter{s: p.Schema}
	out.Doc = schema.NewDoc(p.Schema, c.blocks(childNodes(start))...)
	return out, nil
}

func htmlFragment(content string, s *doctree.Schema) ([]*doctree.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	c := &htmlConverter{s: s}
	return c.blocks(nodes), nil
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

type htmlConverter struct {
	s *doctree.Schema
}

// blocks converts a run of sibling nodes. Loose inline content between block
// elements is gathered into paragraphs.
func (c *htmlConverter) blocks(nodes []*html.Node) []*doctree.Node {
	var out []*doctree.Node
	var loose strings.Builder
	flush := func() {
		if t := normalizeSpace(loose.String()); t != "" {
			out = append(out, schema.NewParagraph(c.s, t))
		}
		loose.Reset()
	}
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode:
			loose.WriteString(n.Data)
		case n.Type != html.ElementNode || skipElement(n):
		case isBlockElement(n):
			flush()
			out = append(out, c.block(n)...)
		default:
			writeInline(&loose, n)
		}
	}
	flush()
	return out
}

func (c *htmlConverter) block(n *html.Node) []*doctree.Node {
	if level := headingLevel(n.Data); level > 0 {
		return []*doctree.Node{schema.NewHeading(c.s, level, inlineText(n))}
	}
	switch n.Data {
	case "p":
		if t := inlineText(n); t != "" {
			return []*doctree.Node{schema.NewParagraph(c.s, t)}
		}
		return nil
	case "pre":
		lang := ""
		code := n
		if ch := firstElement(n, "code"); ch != nil {
			code = ch
			lang = languageOf(ch)
		}
		return []*doctree.Node{schema.NewCodeBlock(c.s, lang, strings.TrimSuffix(rawText(code), "\n"))}
	case "blockquote":
		return []*doctree.Node{c.s.Node(schema.Blockquote).Create(nil, c.blocks(childNodes(n))...)}
	case "ul", "ol":
		var items []*doctree.Node
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || li.Data != "li" {
				continue
			}
			items = append(items, c.s.Node(schema.ListItem).Create(nil, c.blocks(childNodes(li))...))
		}
		if n.Data == "ol" {
			start := 1
			if v, err := strconv.Atoi(attr(n, "start")); err == nil {
				start = v
			}
			return []*doctree.Node{c.s.Node(schema.OrderedList).Create(map[string]any{"start": start}, items...)}
		}
		return []*doctree.Node{c.s.Node(schema.BulletList).Create(nil, items...)}
	case "hr":
		if hasClass(n, ClassPageBreak) {
			return c.leaf(schema.PageBreak, nil)
		}
		return c.leaf(schema.HorizontalRule, nil)
	case "header":
		text := inlineText(n)
		if text == "" {
			return c.leaf(schema.Header, nil)
		}
		return c.leaf(schema.Header, map[string]any{"text": text})
	case "footer":
		return c.leaf(schema.Footer, pageAttrs(n))
	case "div":
		if hasClass(n, ClassPageNumber) {
			return c.leaf(schema.PageNumber, pageAttrs(n))
		}
	case "tr":
		var cells []string
		for td := n.FirstChild; td != nil; td = td.NextSibling {
			if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
				cells = append(cells, inlineText(td))
			}
		}
		return paragraphs(c.s, []string{strings.Join(cells, " | ")})
	}
	return c.blocks(childNodes(n))
}

// leaf returns nothing when the schema lacks the type.
func (c *htmlConverter) leaf(name string, attrs map[string]any) []*doctree.Node {
	t := c.s.Node(name)
	if t == nil {
		return nil
	}
	return []*doctree.Node{t.Create(attrs)}
}

func pageAttrs(n *html.Node) map[string]any {
	if v, err := strconv.Atoi(attr(n, AttrPage)); err == nil {
		return map[string]any{"page": v}
	}
	return nil
}

func isBlockElement(n *html.Node) bool {
	if headingLevel(n.Data) > 0 {
		return true
	}
	switch n.Data {
	case "p", "pre", "blockquote", "ul", "ol", "li", "hr", "div", "header", "footer",
		"section", "article", "main", "aside", "table", "thead", "tbody", "tfoot", "tr",
		"figure", "dl", "dt", "dd", "address", "form", "fieldset":
		return true
	}
	return false
}

func skipElement(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "nav", "head", "title", "noscript", "template":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// inlineText returns n's text with whitespace collapsed. <br> becomes a
// newline.
func inlineText(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		} else if c.Type == html.ElementNode && !skipElement(c) {
			writeInline(&buf, c)
		}
	}
	return normalizeSpace(buf.String())
}

func writeInline(buf *strings.Builder, n *html.Node) {
	if n.Data == "br" {
		buf.WriteByte('\n')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			buf.WriteString(c.Data)
		case html.ElementNode:
			if !skipElement(c) {
				writeInline(buf, c)
			}
		}
	}
}

// normalizeSpace collapses whitespace runs within each line and drops empty
// leading and trailing lines.
func normalizeSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// rawText keeps whitespace as is.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func languageOf(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang
		}
	}
	return ""
}

func firstElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.Join(strings.Fields(rawText(n)), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
