package paginate

import (
	"iter"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// FindBreakPositions yields the start of every block of the view's current
// document where the height since the previous page boundary first exceeds
// threshold.
func FindBreakPositions(view View, threshold float64) iter.Seq[int] {
	return NewMeasurer(view, nil).FindBreakPositions(view.Document(), threshold)
}

// FindBreakPositions walks the block nodes of doc in document order,
// measuring through the view. doc must be the snapshot the caller later
// builds its transaction from; positions from any other version are
// meaningless.
//
// Only positions whose parent accepts block content are yielded; a crossing
// block inside a container that does not (a list item in a list) is entered
// and its children are considered instead. Position 0 is never yielded but
// still closes a page. An existing pageBreak also closes a page: the first
// block after it sets the boundary height without being yielded, so a second
// pass over an already paginated document finds nothing new.
func (m *Measurer) FindBreakPositions(doc *doctree.Node, threshold float64) iter.Seq[int] {
	return func(yield func(int) bool) {
		f := &breakFinder{m: m, threshold: threshold, yield: yield}
		f.walk(doc, 0)
	}
}

type breakFinder struct {
	m         *Measurer
	threshold float64
	yield     func(int) bool

	lastBreakHeight float64
	afterBreak      bool
}

// walk visits the block children of parent, whose content starts at pos. It
// returns false once the consumer stops.
func (f *breakFinder) walk(parent *doctree.Node, pos int) bool {
	eligible := parent.Type.Content == doctree.ContentBlock
	for _, child := range parent.Content {
		start := pos
		pos += child.NodeSize()
		if !child.IsBlock() {
			continue
		}

		switch child.Type.Name {
		case schema.PageBreak:
			f.afterBreak = true
			continue
		case schema.PageNumber:
			continue
		}

		height := f.m.MeasureUpTo(pos)
		if f.afterBreak {
			f.afterBreak = false
			f.lastBreakHeight = height
			continue
		}

		if height-f.lastBreakHeight > f.threshold && eligible {
			f.lastBreakHeight = height
			if start == 0 {
				continue
			}
			if !f.yield(start) {
				return false
			}
			continue
		}

		if child.IsLeaf() || child.IsTextblock() {
			continue
		}
		if !f.walk(child, start+1) {
			return false
		}
	}
	return true
}
