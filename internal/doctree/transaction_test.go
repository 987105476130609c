package doctree_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

func sampleDoc(s *doctree.Schema) *doctree.Node {
	// <p>ab</p><blockquote><p>cde</p></blockquote><p>f</p>
	return schema.NewDoc(s,
		schema.NewParagraph(s, "ab"),
		s.Node(schema.Blockquote).Create(nil, schema.NewParagraph(s, "cde")),
		schema.NewParagraph(s, "f"),
	)
}

func TestNodeSize(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	// p(ab)=4, blockquote(p(cde)=5)=7, p(f)=3
	if got := doc.ContentSize(); got != 14 {
		t.Errorf("expected content size 14, got %d", got)
	}
	if got := doc.Content[1].NodeSize(); got != 7 {
		t.Errorf("expected blockquote size 7, got %d", got)
	}
	if got := s.Node(schema.PageBreak).Create(nil).NodeSize(); got != 1 {
		t.Errorf("expected atom size 1, got %d", got)
	}
	if got := s.Text("héllo").NodeSize(); got != 5 {
		t.Errorf("expected text size counted in runes, got %d", got)
	}
}

func TestDescendants_Positions(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)

	type seen struct {
		name string
		pos  int
	}
	var got []seen
	doc.Descendants(func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.IsBlock() {
			got = append(got, seen{n.Type.Name, pos})
		}
		return true
	})
	want := []seen{
		{schema.Paragraph, 0},
		{schema.Blockquote, 4},
		{schema.Paragraph, 5},
		{schema.Paragraph, 11},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDescendants_SkipChildren(t *testing.T) {
	doc := sampleDoc(schema.New())
	count := 0
	doc.Descendants(func(n *doctree.Node, _ int, _ *doctree.Node) bool {
		count++
		return false
	})
	if count != 3 {
		t.Errorf("expected only the 3 top-level nodes, got %d", count)
	}
}

func TestTransaction_InsertBlocks(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	pb := s.Node(schema.PageBreak).Create(nil)
	pn := s.Node(schema.PageNumber).Create(map[string]any{"page": 1})

	tr := doctree.NewTransaction(doc).Insert(4, pb).Insert(5, pn)
	if err := tr.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Steps() != 2 || !tr.DocChanged() {
		t.Errorf("expected 2 steps, got %d", tr.Steps())
	}
	if tr.Before() != doc {
		t.Error("expected Before to be the original document")
	}
	got := tr.Doc()
	names := []string{}
	for _, c := range got.Content {
		names = append(names, c.Type.Name)
	}
	want := []string{schema.Paragraph, schema.PageBreak, schema.PageNumber, schema.Blockquote, schema.Paragraph}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("child %d: expected %s, got %s", i, want[i], names[i])
		}
	}
	if doc.ContentSize() != 14 {
		t.Error("original document was modified")
	}
}

func TestTransaction_InsertInsideContainer(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	pb := s.Node(schema.PageBreak).Create(nil)

	// 5 is the start of the paragraph inside the blockquote.
	tr := doctree.NewTransaction(doc).Insert(5, pb)
	if err := tr.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bq := tr.Doc().Content[1]
	if len(bq.Content) != 2 || bq.Content[0].Type.Name != schema.PageBreak {
		t.Errorf("expected page break as first blockquote child, got %v", bq.Content)
	}
}

func TestTransaction_InsertIntoTextRejected(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	pb := s.Node(schema.PageBreak).Create(nil)

	tr := doctree.NewTransaction(doc).Insert(2, pb)
	if !errors.Is(tr.Err(), doctree.ErrContentNotAllowed) {
		t.Fatalf("expected ErrContentNotAllowed, got %v", tr.Err())
	}
	var se *doctree.StepError
	if !errors.As(tr.Err(), &se) || se.Op != "insert" || se.Pos != 2 {
		t.Errorf("expected insert StepError at 2, got %v", tr.Err())
	}
	// Sticky: later steps are ignored.
	tr.Insert(0, pb)
	if tr.Steps() != 0 {
		t.Errorf("expected no steps after failure, got %d", tr.Steps())
	}
}

func TestTransaction_OutOfRange(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	tr := doctree.NewTransaction(doc).Delete(10, 40)
	if !errors.Is(tr.Err(), doctree.ErrPositionOutOfRange) {
		t.Errorf("expected ErrPositionOutOfRange, got %v", tr.Err())
	}
}

func TestTransaction_DeleteBlocks(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	tr := doctree.NewTransaction(doc).Delete(4, 11)
	if err := tr.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(tr.Doc().Content); got != 2 {
		t.Errorf("expected 2 blocks left, got %d", got)
	}
	if got := tr.Doc().TextContent(); got != "abf" {
		t.Errorf("expected text %q, got %q", "abf", got)
	}
}

func TestTransaction_TextEdits(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)

	tr := doctree.NewTransaction(doc).
		Insert(2, s.Text("XY")). // between a and b
		Delete(8, 9)            // the "c" inside the blockquote, shifted by 2
	if err := tr.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.Doc().Content[0].TextContent(); got != "aXYb" {
		t.Errorf("expected %q, got %q", "aXYb", got)
	}
	if n := len(tr.Doc().Content[0].Content); n != 1 {
		t.Errorf("expected adjacent text to merge into 1 node, got %d", n)
	}
	if got := tr.Doc().Content[1].TextContent(); got != "de" {
		t.Errorf("expected %q, got %q", "de", got)
	}
}

func TestTransaction_DeleteAcrossStructureRejected(t *testing.T) {
	s := schema.New()
	doc := sampleDoc(s)
	// From inside the first paragraph into the blockquote.
	tr := doctree.NewTransaction(doc).Delete(2, 6)
	if !errors.Is(tr.Err(), doctree.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", tr.Err())
	}
}

func TestResolveAfterTopLevel(t *testing.T) {
	doc := sampleDoc(schema.New())
	tests := []struct {
		pos  int
		want int
	}{
		{0, 0},
		{2, 4},
		{4, 4},
		{6, 11},
		{12, 14},
		{14, 14},
	}
	for _, tt := range tests {
		got, ok := doc.ResolveAfterTopLevel(tt.pos)
		if !ok || got != tt.want {
			t.Errorf("ResolveAfterTopLevel(%d) = %d, %v; want %d", tt.pos, got, ok, tt.want)
		}
	}
	if _, ok := doc.ResolveAfterTopLevel(15); ok {
		t.Error("expected out-of-range position to fail")
	}
}

func TestNodeJSON_RoundTrip(t *testing.T) {
	s := schema.New()
	doc := schema.NewDoc(s,
		schema.NewHeading(s, 2, "Title"),
		s.Node(schema.PageNumber).Create(map[string]any{"page": 3}),
	)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := s.NodeFromJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.ContentSize() != doc.ContentSize() {
		t.Errorf("expected size %d, got %d", doc.ContentSize(), back.ContentSize())
	}
	if got := back.Content[0].IntAttr("level"); got != 2 {
		t.Errorf("expected heading level 2, got %d", got)
	}
	if got := back.Content[1].IntAttr("page"); got != 3 {
		t.Errorf("expected page 3, got %d", got)
	}
}

func TestNodeFromJSON_Rejects(t *testing.T) {
	s := schema.New()
	if _, err := s.NodeFromJSON([]byte(`{"type":"table"}`)); !errors.Is(err, doctree.ErrUnknownNodeType) {
		t.Errorf("expected ErrUnknownNodeType, got %v", err)
	}
	bad := `{"type":"doc","content":[{"type":"text","text":"loose"}]}`
	if _, err := s.NodeFromJSON([]byte(bad)); !errors.Is(err, doctree.ErrContentNotAllowed) {
		t.Errorf("expected ErrContentNotAllowed, got %v", err)
	}
}

func TestSchemaWithout(t *testing.T) {
	s := schema.Without(schema.PageBreak)
	if s.Node(schema.PageBreak) != nil {
		t.Error("expected pageBreak to be absent")
	}
	if s.Node(schema.PageNumber) == nil {
		t.Error("expected pageNumber to remain")
	}
}
