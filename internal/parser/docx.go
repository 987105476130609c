package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
	"github.com/fumiama/go-docx"
)

// Paragraph styles the DOCX exporter writes for the non-body node types.
const (
	DocxStyleHeader = "Header"
	DocxStyleFooter = "Footer"
	DocxStyleCode   = "Code"
)

var pageCaption = regexp.MustCompile(`^Page (\d+)$`)

// DOCXParser handles .docx files. Page-type breaks become pageBreak nodes; a
// centered "Page N" paragraph right after one becomes its pageNumber.
type DOCXParser struct {
	Schema *doctree.Schema
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	c := &docxConverter{s: p.Schema}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			c.paragraph(it)
		case *docx.Table:
			c.table(it)
		}
	}

	out := &Document{
		Title: titleFrom(filename),
		Doc:   schema.NewDoc(p.Schema, c.out...),
	}
	if c.firstH1 != "" && out.Title == "" {
		out.Title = c.firstH1
	}
	return out, nil
}

type docxConverter struct {
	s          *doctree.Schema
	out        []*doctree.Node
	afterBreak bool
	firstH1    string
}

func (c *docxConverter) emit(n *doctree.Node) {
	c.out = append(c.out, n)
	c.afterBreak = false
}

func (c *docxConverter) paragraph(para *docx.Paragraph) {
	for i, text := range docxSegments(para) {
		if i > 0 {
			c.pageBreak()
		}
		c.text(para, text)
	}
}

func (c *docxConverter) pageBreak() {
	t := c.s.Node(schema.PageBreak)
	if t == nil {
		return
	}
	c.emit(t.Create(nil))
	c.afterBreak = true
}

func (c *docxConverter) text(para *docx.Paragraph, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	style := docxStyle(para)
	if c.afterBreak && docxCentered(para) {
		if m := pageCaption.FindStringSubmatch(text); m != nil {
			if t := c.s.Node(schema.PageNumber); t != nil {
				page, _ := strconv.Atoi(m[1])
				c.emit(t.Create(map[string]any{"page": page}))
				return
			}
		}
	}
	switch {
	case strings.EqualFold(style, DocxStyleHeader) && c.s.Node(schema.Header) != nil:
		c.emit(c.s.Node(schema.Header).Create(map[string]any{"text": text}))
		return
	case strings.EqualFold(style, DocxStyleFooter) && c.s.Node(schema.Footer) != nil:
		var attrs map[string]any
		if m := pageCaption.FindStringSubmatch(text); m != nil {
			page, _ := strconv.Atoi(m[1])
			attrs = map[string]any{"page": page}
		}
		c.emit(c.s.Node(schema.Footer).Create(attrs))
		return
	case strings.EqualFold(style, DocxStyleCode):
		c.emit(schema.NewCodeBlock(c.s, "", text))
		return
	}
	if level := docxHeadingLevel(style); level > 0 {
		if level == 1 && c.firstH1 == "" {
			c.firstH1 = text
		}
		c.emit(schema.NewHeading(c.s, level, text))
		return
	}
	c.emit(schema.NewParagraph(c.s, text))
}

func (c *docxConverter) table(tbl *docx.Table) {
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				segs := docxSegments(para)
				if t := strings.TrimSpace(strings.Join(segs, " ")); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		if t := strings.Join(cells, " | "); strings.TrimSpace(strings.ReplaceAll(t, "|", "")) != "" {
			c.emit(schema.NewParagraph(c.s, t))
		}
	}
}

// docxSegments splits a paragraph's text at page-type breaks. Line breaks
// become newlines.
func docxSegments(para *docx.Paragraph) []string {
	var segments []string
	var buf strings.Builder
	runs := func(run *docx.Run) {
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				buf.WriteString(v.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			case *docx.BarterRabbet:
				if v.Type == "page" {
					segments = append(segments, buf.String())
					buf.Reset()
				} else {
					buf.WriteByte('\n')
				}
			}
		}
	}
	for _, child := range para.Children {
		switch v := child.(type) {
		case *docx.Run:
			runs(v)
		case *docx.Hyperlink:
			runs(&v.Run)
		}
	}
	return append(segments, buf.String())
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxCentered(para *docx.Paragraph) bool {
	return para.Properties != nil && para.Properties.Justification != nil &&
		para.Properties.Justification.Val == "center"
}

func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if rest, ok := strings.CutPrefix(s, "heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	if s == "title" {
		return 1
	}
	return 0
}
