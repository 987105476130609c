// Package layout computes the rendered geometry of a document: the vertical
// extent of every block and the line boxes of every textblock.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgallion1/docpager/internal/doctree"
)

// ErrPositionOutOfRange is returned by CoordsAt for positions outside the
// document.
var ErrPositionOutOfRange = errors.New("layout: position out of range")

// Options controls page geometry. Lengths are CSS pixels.
type Options struct {
	Width         float64
	FontSize      float64
	LineHeight    float64 // multiple of the font size
	PaddingTop    float64
	PaddingBottom float64
	PaddingX      float64
}

// DefaultOptions matches an A4 page at 96 DPI with a 16px body font.
func DefaultOptions() Options {
	return Options{
		Width:         794,
		FontSize:      16,
		LineHeight:    1.5,
		PaddingTop:    16,
		PaddingBottom: 16,
		PaddingX:      48,
	}
}

// minContentWidth keeps wrapping finite on absurdly narrow viewports.
const minContentWidth = 40

// Engine lays out documents. An Engine is safe for concurrent use.
type Engine struct {
	opts  Options
	faces *faceCache
}

func NewEngine(opts Options) (*Engine, error) {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = def.LineHeight
	}
	faces, err := newFaceCache()
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return &Engine{opts: opts, faces: faces}, nil
}

func (e *Engine) Options() Options { return e.opts }

// WithWidth returns an engine sharing e's fonts laid out at a new width.
func (e *Engine) WithWidth(width float64) *Engine {
	opts := e.opts
	if width > 0 {
		opts.Width = width
	}
	return &Engine{opts: opts, faces: e.faces}
}

// Coords is the vertical extent of a position.
type Coords struct {
	Top    float64
	Bottom float64
}

// Line is one line box of a textblock. From and To are offsets into the
// textblock's content.
type Line struct {
	From, To    int
	Top, Bottom float64
}

// Box is the laid-out region of one block node.
type Box struct {
	Node   *doctree.Node
	Start  int // position before the node
	End    int // position after the node
	Depth  int
	Top    float64
	Bottom float64
	Lines  []Line
}

// Result is the layout of one document snapshot.
type Result struct {
	doc      *doctree.Node
	size     int
	top      float64
	height   float64
	boxes    []Box // document order, so sorted by Start
	endIndex map[int]int
}

// Layout measures doc.
func (e *Engine) Layout(doc *doctree.Node) *Result {
	r := &Result{
		doc:  doc,
		size: doc.ContentSize(),
		top:  e.opts.PaddingTop,
	}
	width := max(e.opts.Width-2*e.opts.PaddingX, minContentWidth)
	y := e.layoutChildren(r, doc, 0, 0, width, e.opts.PaddingTop)
	r.height = y + e.opts.PaddingBottom

	r.endIndex = make(map[int]int, len(r.boxes))
	for i, b := range r.boxes {
		r.endIndex[b.End] = i
	}
	return r
}

func (e *Engine) layoutChildren(r *Result, parent *doctree.Node, pos, depth int, width, y float64) float64 {
	for _, c := range parent.Content {
		if c.IsBlock() {
			y = e.layoutBlock(r, c, pos, depth, width, y)
		}
		pos += c.NodeSize()
	}
	return y
}

func (e *Engine) layoutBlock(r *Result, n *doctree.Node, pos, depth int, width, y float64) float64 {
	st := styleFor(n)
	y += st.marginTop
	idx := len(r.boxes)
	r.boxes = append(r.boxes, Box{
		Node:  n,
		Start: pos,
		End:   pos + n.NodeSize(),
		Depth: depth,
		Top:   y,
	})

	size := e.opts.FontSize * st.scale
	lineHeight := size * e.opts.LineHeight
	inner := y + st.padding

	var bottom float64
	switch {
	case n.IsTextblock():
		lines := e.wrap(inlineRunes(n), st.face, size, max(width-st.indent, minContentWidth))
		for i := range lines {
			lines[i].Top = inner + float64(i)*lineHeight
			lines[i].Bottom = lines[i].Top + lineHeight
		}
		r.boxes[idx].Lines = lines
		bottom = inner + float64(len(lines))*lineHeight + st.padding
	case st.caption != nil:
		bottom = inner + lineHeight + st.padding
		r.boxes[idx].Lines = []Line{{Top: inner, Bottom: inner + lineHeight}}
	case n.IsLeaf():
		bottom = inner + st.rule + st.padding
	default:
		end := e.layoutChildren(r, n, pos+1, depth+1, max(width-st.indent, minContentWidth), inner)
		bottom = end + st.padding
	}
	bottom += st.border
	r.boxes[idx].Bottom = bottom
	return bottom + st.marginBottom
}

// Height is the total rendered height including page padding.
func (r *Result) Height() float64 { return r.height }

func (r *Result) Doc() *doctree.Node { return r.doc }

// Boxes returns the block boxes in document order.
func (r *Result) Boxes() []Box { return r.boxes }

// CoordsAt returns the vertical extent of pos. Inside a textblock that is
// the line holding the offset. On a block boundary it is the bottom edge of
// the block ending there, or failing that the top edge of the next block.
func (r *Result) CoordsAt(pos int) (Coords, error) {
	if pos < 0 || pos > r.size {
		return Coords{}, fmt.Errorf("%w: %d not in [0, %d]", ErrPositionOutOfRange, pos, r.size)
	}

	// Textblocks have no block children, so a textblock holding pos is the
	// last box starting before it.
	i := sort.Search(len(r.boxes), func(i int) bool { return r.boxes[i].Start >= pos }) - 1
	if i >= 0 {
		if b := &r.boxes[i]; b.Node.IsTextblock() && pos < b.End {
			return b.lineCoords(pos - b.Start - 1), nil
		}
	}

	if j, ok := r.endIndex[pos]; ok {
		b := r.boxes[j]
		return Coords{Top: b.Bottom, Bottom: b.Bottom}, nil
	}
	if next := i + 1; next < len(r.boxes) {
		b := r.boxes[next]
		return Coords{Top: b.Top, Bottom: b.Top}, nil
	}
	return Coords{Top: r.top, Bottom: r.top}, nil
}

func (b *Box) lineCoords(off int) Coords {
	if len(b.Lines) == 0 {
		return Coords{Top: b.Top, Bottom: b.Bottom}
	}
	for _, l := range b.Lines {
		if off < l.To {
			return Coords{Top: l.Top, Bottom: l.Bottom}
		}
	}
	last := b.Lines[len(b.Lines)-1]
	return Coords{Top: last.Top, Bottom: last.Bottom}
}
