package layout

import (
	"fmt"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

type style struct {
	face         faceKind
	scale        float64 // font size relative to the body font
	marginTop    float64
	marginBottom float64
	padding      float64 // above and below the content
	indent       float64 // narrows the content width
	rule         float64 // fixed content height of leaf blocks
	border       float64
	caption      func(n *doctree.Node) string
}

var headingScale = [...]float64{2, 1.5, 1.25, 1.125, 1, 0.875}

func styleFor(n *doctree.Node) style {
	switch n.Type.Name {
	case schema.Paragraph:
		return style{scale: 1, marginBottom: 12}
	case schema.Heading:
		level := min(max(n.IntAttr("level"), 1), len(headingScale))
		return style{face: faceBold, scale: headingScale[level-1], marginTop: 16, marginBottom: 8}
	case schema.CodeBlock:
		return style{face: faceMono, scale: 0.875, padding: 12, marginBottom: 12}
	case schema.Blockquote:
		return style{scale: 1, indent: 24, marginBottom: 12}
	case schema.BulletList, schema.OrderedList:
		return style{scale: 1, indent: 24, marginBottom: 12}
	case schema.ListItem:
		return style{scale: 1, marginBottom: 4}
	case schema.HorizontalRule:
		return style{scale: 1, rule: 1, marginTop: 16, marginBottom: 16}
	case schema.PageBreak:
		return style{scale: 1, rule: 2, marginTop: 20, marginBottom: 20}
	case schema.PageNumber:
		return style{scale: 0.875, padding: 4, caption: PageCaption}
	case schema.Header:
		return style{face: faceBold, scale: 1.125, padding: 8, border: 1, caption: func(n *doctree.Node) string {
			return n.StringAttr("text")
		}}
	case schema.Footer:
		return style{scale: 0.875, padding: 8, border: 1, caption: PageCaption}
	}
	if n.IsLeaf() {
		return style{scale: 1, rule: 0}
	}
	return style{scale: 1, marginBottom: 12}
}

// PageCaption is the visible label of page-numbered markers.
func PageCaption(n *doctree.Node) string {
	return fmt.Sprintf("Page %d", n.IntAttr("page"))
}
