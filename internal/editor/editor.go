// Package editor hosts a live document: it applies edits, keeps the layout
// current and notifies subscribers, the pagination controller among them.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/schema"
)

// Editor implements paginate.View and paginate.EventSource.
type Editor struct {
	mu      sync.Mutex
	schema  *doctree.Schema
	doc     *doctree.Node
	engine  *layout.Engine
	result  *layout.Result
	version uint64

	subMu   sync.Mutex
	subs    map[int]func(paginate.Event)
	nextSub int
}

// New hosts doc. A nil doc starts an empty document.
func New(s *doctree.Schema, doc *doctree.Node, engine *layout.Engine) *Editor {
	if doc == nil {
		doc = schema.NewDoc(s)
	}
	return &Editor{
		schema: s,
		doc:    doc,
		engine: engine,
		result: engine.Layout(doc),
		subs:   make(map[int]func(paginate.Event)),
	}
}

func (e *Editor) RenderedHeight() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result.Height()
}

func (e *Editor) CoordsAt(pos int) (paginate.Coords, error) {
	e.mu.Lock()
	r := e.result
	e.mu.Unlock()
	c, err := r.CoordsAt(pos)
	if err != nil {
		return paginate.Coords{}, err
	}
	return paginate.Coords{Top: c.Top, Bottom: c.Bottom}, nil
}

func (e *Editor) Document() *doctree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

func (e *Editor) Schema() *doctree.Schema { return e.schema }

// Layout returns the current layout.
func (e *Editor) Layout() *layout.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Version increases with every committed change.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Width is the current viewport width.
func (e *Editor) Width() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Options().Width
}

// Dispatch commits tr and emits an update event.
func (e *Editor) Dispatch(tr *doctree.Transaction) error {
	changed, err := e.commit(tr)
	if err != nil {
		return err
	}
	if changed {
		e.emit(paginate.EventUpdate)
	}
	return nil
}

func (e *Editor) commit(tr *doctree.Transaction) (bool, error) {
	if err := tr.Err(); err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if tr.Before() != e.doc {
		return false, paginate.ErrStaleTransaction
	}
	if !tr.DocChanged() {
		return false, nil
	}
	e.doc = tr.Doc()
	e.result = e.engine.Layout(e.doc)
	e.version++
	return true, nil
}

// Subscribe registers fn for every event. Events are delivered on the
// goroutine that caused them, after the editor's lock is released.
func (e *Editor) Subscribe(fn func(paginate.Event)) func() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Editor) emit(kind paginate.EventKind) {
	e.subMu.Lock()
	fns := make([]func(paginate.Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(paginate.Event{Kind: kind})
	}
}

// Paste inserts nodes at pos. Block content aimed inside a textblock lands
// after the enclosing top-level block.
func (e *Editor) Paste(pos int, nodes ...*doctree.Node) error {
	return e.insertFrom(paginate.EventPaste, pos, nodes)
}

// Drop behaves like Paste but reports a drop.
func (e *Editor) Drop(pos int, nodes ...*doctree.Node) error {
	return e.insertFrom(paginate.EventDrop, pos, nodes)
}

func (e *Editor) insertFrom(kind paginate.EventKind, pos int, nodes []*doctree.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	doc := e.Document()
	tr := doctree.NewTransaction(doc).Insert(pos, nodes...)
	if errors.Is(tr.Err(), doctree.ErrContentNotAllowed) {
		if after, ok := doc.ResolveAfterTopLevel(pos); ok {
			tr = doctree.NewTransaction(doc).Insert(after, nodes...)
		}
	}
	if _, err := e.commit(tr); err != nil {
		return fmt.Errorf("%s at %d: %w", kind, pos, err)
	}
	e.emit(kind)
	e.emit(paginate.EventUpdate)
	return nil
}

// InsertText types text at pos, which must be inside a textblock.
func (e *Editor) InsertText(pos int, text string) error {
	if text == "" {
		return nil
	}
	tr := doctree.NewTransaction(e.Document()).Insert(pos, e.schema.Text(text))
	if err := e.Dispatch(tr); err != nil {
		return fmt.Errorf("insert text at %d: %w", pos, err)
	}
	return nil
}

// Delete removes [from, to).
func (e *Editor) Delete(from, to int) error {
	tr := doctree.NewTransaction(e.Document()).Delete(from, to)
	if err := e.Dispatch(tr); err != nil {
		return fmt.Errorf("delete [%d, %d): %w", from, to, err)
	}
	return nil
}

// Append adds blocks at the end of the document.
func (e *Editor) Append(nodes ...*doctree.Node) error {
	doc := e.Document()
	tr := doctree.NewTransaction(doc).Insert(doc.ContentSize(), nodes...)
	if err := e.Dispatch(tr); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// Resize changes the viewport width and relayouts.
func (e *Editor) Resize(width float64) {
	e.mu.Lock()
	e.engine = e.engine.WithWidth(width)
	e.result = e.engine.Layout(e.doc)
	e.mu.Unlock()
	e.emit(paginate.EventResize)
}
