package paginate

import (
	"fmt"
	"sync"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// fakeView lays blocks out from an "h" attribute. Blocks without one, the
// markers included, take no height; containers are as tall as their
// children.
type fakeView struct {
	mu         sync.Mutex
	schema     *doctree.Schema
	doc        *doctree.Node
	dispatches int
	unresolved map[int]bool

	// beforeDispatch runs inside Dispatch before the stale check.
	beforeDispatch func(v *fakeView)
	// afterDocument runs once, after the next Document call has read the
	// document and before it returns.
	afterDocument func(v *fakeView)
	subs           []func(Event)
}

func newFakeView(s *doctree.Schema, blocks ...*doctree.Node) *fakeView {
	return &fakeView{schema: s, doc: schema.NewDoc(s, blocks...)}
}

// block is a one-character paragraph h pixels tall.
func block(s *doctree.Schema, h float64) *doctree.Node {
	return s.Node(schema.Paragraph).Create(map[string]any{"h": h}, s.Text("x"))
}

func pair(s *doctree.Schema, page int) []*doctree.Node {
	return []*doctree.Node{
		s.Node(schema.PageBreak).Create(nil),
		s.Node(schema.PageNumber).Create(map[string]any{"page": page}),
	}
}

type fakeBox struct {
	start, end  int
	top, bottom float64
}

func boxes(parent *doctree.Node, pos int, y float64, out []fakeBox) ([]fakeBox, float64) {
	for _, c := range parent.Content {
		start := pos
		pos += c.NodeSize()
		if !c.IsBlock() {
			continue
		}
		idx := len(out)
		out = append(out, fakeBox{start: start, end: pos, top: y})
		if h, ok := c.Attr("h").(float64); ok {
			y += h
		} else if !c.IsLeaf() && !c.IsTextblock() {
			out, y = boxes(c, start+1, y, out)
		}
		out[idx].bottom = y
	}
	return out, y
}

func (v *fakeView) RenderedHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, h := boxes(v.doc, 0, 0, nil)
	return h
}

func (v *fakeView) CoordsAt(pos int) (Coords, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if pos < 0 || pos > v.doc.ContentSize() || v.unresolved[pos] {
		return Coords{}, fmt.Errorf("unresolved position %d", pos)
	}
	bs, total := boxes(v.doc, 0, 0, nil)
	var ending *fakeBox
	for i := range bs {
		b := &bs[i]
		if b.end == pos {
			ending = b
		}
	}
	if ending != nil {
		return Coords{Top: ending.bottom, Bottom: ending.bottom}, nil
	}
	for _, b := range bs {
		if b.start >= pos {
			return Coords{Top: b.top, Bottom: b.top}, nil
		}
	}
	return Coords{Top: total, Bottom: total}, nil
}

func (v *fakeView) Document() *doctree.Node {
	v.mu.Lock()
	doc, hook := v.doc, v.afterDocument
	v.afterDocument = nil
	v.mu.Unlock()
	if hook != nil {
		hook(v)
	}
	return doc
}

func (v *fakeView) Schema() *doctree.Schema { return v.schema }

func (v *fakeView) Dispatch(tr *doctree.Transaction) error {
	if v.beforeDispatch != nil {
		v.beforeDispatch(v)
	}
	v.mu.Lock()
	if tr.Err() != nil {
		v.mu.Unlock()
		return tr.Err()
	}
	if tr.Before() != v.doc {
		v.mu.Unlock()
		return ErrStaleTransaction
	}
	v.doc = tr.Doc()
	v.dispatches++
	subs := append([]func(Event){}, v.subs...)
	v.mu.Unlock()
	for _, fn := range subs {
		fn(Event{Kind: EventUpdate})
	}
	return nil
}

func (v *fakeView) setDoc(blocks ...*doctree.Node) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.doc = schema.NewDoc(v.schema, blocks...)
}

func (v *fakeView) dispatchCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dispatches
}

func (v *fakeView) Subscribe(fn func(Event)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs = append(v.subs, fn)
	idx := len(v.subs) - 1
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.subs[idx] = func(Event) {}
	}
}

func (v *fakeView) emit(kind EventKind) {
	v.mu.Lock()
	subs := append([]func(Event){}, v.subs...)
	v.mu.Unlock()
	for _, fn := range subs {
		fn(Event{Kind: kind})
	}
}

// markerLayout lists the top-level node names with page numbers attached
// to pageNumber markers, e.g. "paragraph pageBreak pageNumber:1 paragraph".
func markerLayout(doc *doctree.Node) []string {
	var out []string
	for _, c := range doc.Content {
		name := c.Type.Name
		if name == schema.PageNumber {
			name = fmt.Sprintf("%s:%d", name, c.IntAttr("page"))
		}
		out = append(out, name)
	}
	return out
}
