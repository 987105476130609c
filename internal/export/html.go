package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/parser"
	"github.com/dgallion1/docpager/internal/schema"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders doc as a standalone page.
func HTML(w io.Writer, doc *doctree.Node, title string) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	page := element("html")
	head := element("head")
	head.AppendChild(element("meta", html.Attribute{Key: "charset", Val: "utf-8"}))
	t := element("title")
	t.AppendChild(textNode(title))
	head.AppendChild(t)
	page.AppendChild(head)

	body := element("body")
	for _, b := range doc.Content {
		if n := htmlBlock(b); n != nil {
			body.AppendChild(n)
		}
	}
	page.AppendChild(body)
	root.AppendChild(page)

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// htmlFragment renders a single block, as embedded in Markdown output.
func htmlFragment(n *doctree.Node) (string, error) {
	el := htmlBlock(n)
	if el == nil {
		return "", nil
	}
	var sb strings.Builder
	if err := html.Render(&sb, el); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func htmlBlock(n *doctree.Node) *html.Node {
	switch n.Type.Name {
	case schema.Paragraph:
		return withInline(element("p"), n)
	case schema.Heading:
		level := min(max(n.IntAttr("level"), 1), 6)
		return withInline(element("h"+strconv.Itoa(level)), n)
	case schema.CodeBlock:
		code := element("code")
		if lang := n.StringAttr("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		code.AppendChild(textNode(n.TextContent()))
		pre := element("pre")
		pre.AppendChild(code)
		return pre
	case schema.Blockquote, schema.ListItem:
		tag := "blockquote"
		if n.Type.Name == schema.ListItem {
			tag = "li"
		}
		return withBlocks(element(tag), n)
	case schema.BulletList:
		return withBlocks(element("ul"), n)
	case schema.OrderedList:
		ol := element("ol")
		if start := n.IntAttr("start"); start != 1 {
			ol.Attr = append(ol.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(start)})
		}
		return withBlocks(ol, n)
	case schema.HorizontalRule:
		return element("hr")
	case schema.PageBreak:
		return element("hr", html.Attribute{Key: "class", Val: parser.ClassPageBreak})
	case schema.PageNumber:
		div := element("div",
			html.Attribute{Key: "class", Val: parser.ClassPageNumber},
			html.Attribute{Key: parser.AttrPage, Val: strconv.Itoa(n.IntAttr("page"))})
		div.AppendChild(textNode(layout.PageCaption(n)))
		return div
	case schema.Header:
		h := element("header", html.Attribute{Key: "class", Val: parser.ClassDocHeader})
		h.AppendChild(textNode(n.StringAttr("text")))
		return h
	case schema.Footer:
		f := element("footer",
			html.Attribute{Key: "class", Val: parser.ClassDocFooter},
			html.Attribute{Key: parser.AttrPage, Val: strconv.Itoa(n.IntAttr("page"))})
		f.AppendChild(textNode(layout.PageCaption(n)))
		return f
	}
	if n.IsTextblock() {
		return withInline(element("p"), n)
	}
	if !n.IsLeaf() {
		return withBlocks(element("div"), n)
	}
	return nil
}

func withInline(el *html.Node, n *doctree.Node) *html.Node {
	for _, c := range n.Content {
		switch {
		case c.IsText():
			el.AppendChild(textNode(c.Text))
		case c.Type.Name == schema.HardBreak:
			el.AppendChild(element("br"))
		}
	}
	return el
}

func withBlocks(el *html.Node, n *doctree.Node) *html.Node {
	for _, c := range n.Content {
		if child := htmlBlock(c); child != nil {
			el.AppendChild(child)
		}
	}
	return el
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
