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
	"github.com/fumiama/go-docx"
)

// DOCX writes doc as a Word document. A pageBreak becomes a page-type break
// and the pageNumber after it a centered caption, the shape DOCXParser reads
// back.
func DOCX(w io.Writer, doc *doctree.Node) error {
	d := docx.New().WithDefaultTheme().WithA4Page()
	for _, b := range doc.Content {
		docxBlock(d, b, "")
	}
	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// docxBlock appends n. prefix marks list items and quotes, which go-docx has
// no numbering setup for.
func docxBlock(d *docx.Docx, n *doctree.Node, prefix string) {
	switch n.Type.Name {
	case schema.Heading:
		level := min(max(n.IntAttr("level"), 1), 6)
		d.AddParagraph().Style("Heading" + strconv.Itoa(level)).AddText(prefix + inlineString(n)).Bold()
	case schema.CodeBlock:
		d.AddParagraph().Style(parser.DocxStyleCode).AddText(n.TextContent()).Font("Courier New", "Courier New", "Courier New", "default")
	case schema.Blockquote:
		for _, c := range n.Content {
			docxBlock(d, c, prefix+"> ")
		}
	case schema.BulletList, schema.OrderedList:
		start := n.IntAttr("start")
		for i, item := range n.Content {
			marker := "• "
			if n.Type.Name == schema.OrderedList {
				marker = strconv.Itoa(start+i) + ". "
			}
			for j, c := range item.Content {
				p := prefix + strings.Repeat(" ", len([]rune(marker)))
				if j == 0 {
					p = prefix + marker
				}
				docxBlock(d, c, p)
			}
		}
	case schema.HorizontalRule:
		d.AddParagraph().Justification("center").AddText("* * *")
	case schema.PageBreak:
		d.AddParagraph().AddPageBreaks()
	case schema.PageNumber:
		d.AddParagraph().Justification("center").AddText(layout.PageCaption(n)).Size("18")
	case schema.Header:
		d.AddParagraph().Style(parser.DocxStyleHeader).AddText(n.StringAttr("text")).Bold()
	case schema.Footer:
		d.AddParagraph().Style(parser.DocxStyleFooter).Justification("center").AddText(layout.PageCaption(n)).Size("18")
	default:
		if n.IsTextblock() {
			d.AddParagraph().AddText(prefix + inlineString(n))
			return
		}
		for _, c := range n.Content {
			docxBlock(d, c, prefix)
		}
	}
}
