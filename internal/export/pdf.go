package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/schema"
)

const (
	pdfBodySize  = 11.0
	pdfLineRatio = 1.4
	pdfMargin    = 56.0
)

// The Go fonts are embedded as UTF-8 fonts so text outside Latin-1 keeps
// its glyphs. They cover Latin, Greek and Cyrillic; other scripts such as
// CJK render as missing glyphs.
const (
	pdfSans = "Go"
	pdfMono = "GoMono"
)

func addPDFFonts(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(pdfSans, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfSans, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(pdfSans, "I", goitalic.TTF)
	pdf.AddUTF8FontFromBytes(pdfMono, "", gomono.TTF)
}

var pdfHeadingScale = [...]float64{2, 1.5, 1.25, 1.125, 1, 0.875}

// PDF typesets doc on A4 pages. Every pageBreak starts a new page and the
// pageNumber after it is printed in that page's footer. Pages the PDF engine
// adds on overflow carry no caption.
func PDF(w io.Writer, doc *doctree.Node, title string) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("docpager", true)

	addPDFFonts(pdf)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load pdf fonts: %w", err)
	}

	r := &pdfRenderer{
		pdf:      pdf,
		captions: make(map[int]string),
	}
	pdf.SetFooterFunc(r.footer)
	pdf.AddPage()
	for _, b := range doc.Content {
		r.block(b, 0)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfRenderer struct {
	pdf      *fpdf.Fpdf
	captions map[int]string
	fresh    bool
}

func (r *pdfRenderer) footer() {
	caption, ok := r.captions[r.pdf.PageNo()]
	if !ok {
		return
	}
	r.pdf.SetY(-pdfMargin * 0.75)
	r.pdf.SetFont(pdfSans, "I", pdfBodySize*0.875)
	r.pdf.CellFormat(0, pdfBodySize, caption, "", 0, "C", false, 0, "")
}

func (r *pdfRenderer) text(s string, style string, size float64, indent float64) {
	r.pdf.SetFont(pdfSans, style, size)
	r.pdf.SetX(pdfMargin + indent)
	r.pdf.MultiCell(0, size*pdfLineRatio, s, "", "L", false)
	r.pdf.Ln(size * 0.6)
	r.fresh = false
}

func (r *pdfRenderer) block(n *doctree.Node, indent float64) {
	switch n.Type.Name {
	case schema.Heading:
		level := min(max(n.IntAttr("level"), 1), 6)
		r.text(inlineString(n), "B", pdfBodySize*pdfHeadingScale[level-1], indent)
	case schema.CodeBlock:
		r.pdf.SetFont(pdfMono, "", pdfBodySize*0.875)
		r.pdf.SetX(pdfMargin + indent)
		r.pdf.SetFillColor(244, 244, 244)
		r.pdf.MultiCell(0, pdfBodySize*0.875*pdfLineRatio, n.TextContent(), "", "L", true)
		r.pdf.Ln(pdfBodySize * 0.6)
		r.fresh = false
	case schema.Blockquote:
		for _, c := range n.Content {
			r.block(c, indent+18)
		}
	case schema.BulletList, schema.OrderedList:
		start := n.IntAttr("start")
		for i, item := range n.Content {
			marker := "-"
			if n.Type.Name == schema.OrderedList {
				marker = strconv.Itoa(start+i) + "."
			}
			r.pdf.SetFont(pdfSans, "", pdfBodySize)
			r.pdf.SetX(pdfMargin + indent)
			r.pdf.CellFormat(18, pdfBodySize*pdfLineRatio, marker, "", 0, "L", false, 0, "")
			for _, c := range item.Content {
				r.block(c, indent+18)
			}
		}
	case schema.HorizontalRule:
		x, y := r.pdf.GetXY()
		pageW, _ := r.pdf.GetPageSize()
		r.pdf.SetLineWidth(0.5)
		r.pdf.Line(x+indent, y+4, pageW-pdfMargin, y+4)
		r.pdf.Ln(12)
	case schema.PageBreak:
		r.pdf.AddPage()
		r.fresh = true
	case schema.PageNumber:
		if r.fresh {
			r.captions[r.pdf.PageNo()] = layout.PageCaption(n)
		}
	case schema.Header:
		r.text(n.StringAttr("text"), "B", pdfBodySize*1.125, indent)
	case schema.Footer:
		r.captions[r.pdf.PageNo()] = layout.PageCaption(n)
	default:
		if n.IsTextblock() {
			r.text(strings.TrimRight(inlineString(n), "\n"), "", pdfBodySize, indent)
			return
		}
		for _, c := range n.Content {
			r.block(c, indent)
		}
	}
}
