package editor

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/schema"
)

func newTestEditor(t *testing.T, s *doctree.Schema, blocks ...*doctree.Node) *Editor {
	t.Helper()
	engine, err := layout.NewEngine(layout.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return New(s, schema.NewDoc(s, blocks...), engine)
}

type recorder struct {
	mu    sync.Mutex
	kinds []paginate.EventKind
}

func (r *recorder) record(ev paginate.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, ev.Kind)
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var parts []string
	for _, k := range r.kinds {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ",")
}

func TestEditor_PasteEmitsPasteThenUpdate(t *testing.T) {
	s := schema.New()
	e := newTestEditor(t, s)
	var rec recorder
	unsub := e.Subscribe(rec.record)

	if err := e.Paste(0, schema.NewParagraph(s, "pasted")); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if got := rec.String(); got != "paste,update" {
		t.Errorf("expected paste,update, got %s", got)
	}
	if e.Version() != 1 {
		t.Errorf("expected version 1, got %d", e.Version())
	}

	unsub()
	e.Drop(0, schema.NewParagraph(s, "dropped"))
	if got := rec.String(); got != "paste,update" {
		t.Errorf("expected no events after unsubscribe, got %s", got)
	}
}

func TestEditor_PasteBlocksInsideTextLandsAfterBlock(t *testing.T) {
	s := schema.New()
	e := newTestEditor(t, s, schema.NewParagraph(s, "hello"))
	if err := e.Paste(3, schema.NewParagraph(s, "world")); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	doc := e.Document()
	if len(doc.Content) != 2 || doc.Content[1].TextContent() != "world" {
		t.Errorf("expected pasted paragraph after the first, got %d blocks", len(doc.Content))
	}
}

func TestEditor_TextEditing(t *testing.T) {
	s := schema.New()
	e := newTestEditor(t, s, schema.NewParagraph(s, "hello"))
	if err := e.InsertText(6, " world"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := e.Document().TextContent(); got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}
	if err := e.Delete(1, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := e.Document().TextContent(); got != "world" {
		t.Errorf("expected %q, got %q", "world", got)
	}
	if err := e.InsertText(0, "loose"); !errors.Is(err, doctree.ErrContentNotAllowed) {
		t.Errorf("expected text outside a textblock to be rejected, got %v", err)
	}
}

func TestEditor_StaleDispatchRejected(t *testing.T) {
	s := schema.New()
	e := newTestEditor(t, s, schema.NewParagraph(s, "a"))
	tr := doctree.NewTransaction(e.Document()).Insert(0, schema.NewParagraph(s, "b"))
	if err := e.Append(schema.NewParagraph(s, "c")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := e.Dispatch(tr); !errors.Is(err, paginate.ErrStaleTransaction) {
		t.Errorf("expected ErrStaleTransaction, got %v", err)
	}
	if got := e.Document().TextContent(); got != "ac" {
		t.Errorf("expected %q, got %q", "ac", got)
	}
}

func TestEditor_ResizeRelayouts(t *testing.T) {
	s := schema.New()
	e := newTestEditor(t, s, schema.NewParagraph(s, strings.Repeat("wrap me ", 200)))
	var rec recorder
	e.Subscribe(rec.record)

	before := e.RenderedHeight()
	e.Resize(300)
	if e.RenderedHeight() <= before {
		t.Errorf("expected narrower viewport to be taller: %v -> %v", before, e.RenderedHeight())
	}
	if e.Width() != 300 {
		t.Errorf("expected width 300, got %v", e.Width())
	}
	if got := rec.String(); got != "resize" {
		t.Errorf("expected resize event, got %s", got)
	}
}

func TestEditor_PaginatesWithController(t *testing.T) {
	s := schema.New()
	var blocks []*doctree.Node
	for range 80 {
		blocks = append(blocks, schema.NewParagraph(s, "A line of body text that fits on one line."))
	}
	e := newTestEditor(t, s, blocks...)
	c := paginate.NewController(e,
		paginate.WithLogger(slog.New(slog.DiscardHandler)),
		paginate.WithDebounce(time.Hour),
	)
	c.Attach(e)
	defer c.Close()

	// 80 paragraphs of 36px each are a little over two and a half pages.
	c.Flush()
	first := c.LastResult()
	if first.Action != paginate.ActionInsert || len(first.Pages) != 2 {
		t.Fatalf("expected 2 pages inserted, got %s %v (err %v)", first.Action, first.Pages, first.Err)
	}
	c.Flush()
	if got := c.LastResult().Action; got != paginate.ActionNone {
		t.Errorf("expected second pass to be a no-op, got %s", got)
	}

	doc := e.Document()
	for i, n := range doc.Content {
		if n.Type.Name == schema.PageBreak {
			if i+1 >= len(doc.Content) || doc.Content[i+1].Type.Name != schema.PageNumber {
				t.Errorf("pageBreak at %d not followed by pageNumber", i)
			}
		}
	}

	// Delete paragraphs from the end until two remain; every pair goes.
	for {
		var paras []int
		pos := 0
		for _, n := range e.Document().Content {
			if n.Type.Name == schema.Paragraph {
				paras = append(paras, pos)
			}
			pos += n.NodeSize()
		}
		if len(paras) <= 2 {
			break
		}
		last := paras[len(paras)-1]
		if err := e.Delete(last, last+blocks[0].NodeSize()); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	c.Flush()
	res := c.LastResult()
	if res.Action != paginate.ActionPrune || res.Removed != 2 {
		t.Errorf("expected 2 pairs pruned, got %s/%d (err %v)", res.Action, res.Removed, res.Err)
	}
}
