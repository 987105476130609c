package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

func typeNames(nodes []*doctree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Type.Name
	}
	return out
}

func TestMarkdownParser_Blocks(t *testing.T) {
	input := `# Title

Intro text.

## Section A

> quoted

- one
- two

3. three
4. four

---

Section A content.
`
	p := &MarkdownParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}

	want := []string{
		schema.Heading, schema.Paragraph, schema.Heading, schema.Blockquote,
		schema.BulletList, schema.OrderedList, schema.HorizontalRule, schema.Paragraph,
	}
	got := typeNames(doc.Doc.Content)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	h2 := doc.Doc.Content[2]
	if h2.IntAttr("level") != 2 || h2.TextContent() != "Section A" {
		t.Errorf("expected level 2 %q, got level %d %q", "Section A", h2.IntAttr("level"), h2.TextContent())
	}
	bullets := doc.Doc.Content[4]
	if len(bullets.Content) != 2 || bullets.Content[1].TextContent() != "two" {
		t.Errorf("expected 2 list items ending with %q, got %d", "two", len(bullets.Content))
	}
	if start := doc.Doc.Content[5].IntAttr("start"); start != 3 {
		t.Errorf("expected ordered list start 3, got %d", start)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "List of endpoints:\n\n```http\nGET /api/users\nPOST /api/users\n```\n\n    indented\n"

	p := &MarkdownParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks := doc.Doc.Content
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %v", typeNames(blocks))
	}
	fenced := blocks[1]
	if fenced.Type.Name != schema.CodeBlock || fenced.StringAttr("language") != "http" {
		t.Errorf("expected http code block, got %s %q", fenced.Type.Name, fenced.StringAttr("language"))
	}
	if got := fenced.TextContent(); got != "GET /api/users\nPOST /api/users" {
		t.Errorf("expected code text preserved, got %q", got)
	}
	if got := blocks[2].TextContent(); got != "indented" {
		t.Errorf("expected indented code %q, got %q", "indented", got)
	}
}

func TestMarkdownParser_HardAndSoftBreaks(t *testing.T) {
	input := "soft\nwrap and hard  \nbreak\n"
	p := &MarkdownParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "b.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	para := doc.Doc.Content[0]
	if got := para.TextContent(); got != "soft wrap and hardbreak" {
		t.Errorf("expected %q, got %q", "soft wrap and hardbreak", got)
	}
	var breaks int
	for _, n := range para.Content {
		if n.Type.Name == schema.HardBreak {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("expected 1 hard break, got %d", breaks)
	}
}

func TestMarkdownParser_MarkerHTMLRoundTrip(t *testing.T) {
	input := "Before.\n\n<hr class=\"page-break\">\n\n<div class=\"page-number\" data-page=\"4\">Page 4</div>\n\nAfter.\n"
	p := &MarkdownParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "m.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{schema.Paragraph, schema.PageBreak, schema.PageNumber, schema.Paragraph}
	got := typeNames(doc.Doc.Content)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if page := doc.Doc.Content[2].IntAttr("page"); page != 4 {
		t.Errorf("expected page 4, got %d", page)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Doc.Content) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(doc.Doc.Content))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	p := &MarkdownParser{Schema: schema.New()}
	for _, tt := range tests {
		doc, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if doc.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, doc.Title)
		}
	}
}
