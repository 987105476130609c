package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// Markdown writes doc as CommonMark. Node types Markdown has no syntax for
// (pagination markers, header, footer) are written as raw HTML blocks, which
// the Markdown parser reads back.
func Markdown(w io.Writer, doc *doctree.Node) error {
	bw := bufio.NewWriter(w)
	for i, b := range doc.Content {
		text, err := markdownBlock(b)
		if err != nil {
			return fmt.Errorf("render %s: %w", b.Type.Name, err)
		}
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(text)
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func markdownBlock(n *doctree.Node) (string, error) {
	switch n.Type.Name {
	case schema.Paragraph:
		return markdownInline(n), nil
	case schema.Heading:
		level := min(max(n.IntAttr("level"), 1), 6)
		return strings.Repeat("#", level) + " " + strings.ReplaceAll(markdownInline(n), "\\\n", " "), nil
	case schema.CodeBlock:
		fence := "```"
		for strings.Contains(n.TextContent(), fence) {
			fence += "`"
		}
		return fence + n.StringAttr("language") + "\n" + n.TextContent() + "\n" + fence, nil
	case schema.Blockquote:
		inner, err := markdownBlocks(n)
		if err != nil {
			return "", err
		}
		return prefixLines(inner, "> ", "> "), nil
	case schema.BulletList, schema.OrderedList:
		start := n.IntAttr("start")
		var items []string
		for i, item := range n.Content {
			marker := "- "
			if n.Type.Name == schema.OrderedList {
				marker = strconv.Itoa(start+i) + ". "
			}
			inner, err := markdownBlocks(item)
			if err != nil {
				return "", err
			}
			items = append(items, prefixLines(inner, marker, strings.Repeat(" ", len(marker))))
		}
		return strings.Join(items, "\n"), nil
	case schema.HorizontalRule:
		return "---", nil
	}
	if n.IsTextblock() {
		return markdownInline(n), nil
	}
	return htmlFragment(n)
}

func markdownBlocks(n *doctree.Node) (string, error) {
	var parts []string
	for _, c := range n.Content {
		text, err := markdownBlock(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// markdownInline writes hard breaks as backslash line endings.
func markdownInline(n *doctree.Node) string {
	return strings.ReplaceAll(inlineString(n), "\n", "\\\n")
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		if l == "" && i > 0 {
			lines[i] = strings.TrimRight(p, " ")
			continue
		}
		lines[i] = p + l
	}
	return strings.Join(lines, "\n")
}
