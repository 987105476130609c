package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docpager/internal/schema"
)

func TestHTMLParser_Blocks(t *testing.T) {
	input := `<!DOCTYPE html>
<html><head><title>  Quarterly
 Report </title><style>p { color: red }</style></head>
<body>
<nav>skip me</nav>
<header class="doc-header">Acme Corp</header>
<h2>Summary</h2>
<p>First   line<br>second <b>bold</b> line</p>
<pre><code class="language-go">func main() {
	x := 1
}</code></pre>
<ol start="5"><li>five</li><li><p>six</p></li></ol>
<table><tr><th>a</th><td>b</td></tr></table>
<div>loose <i>text</i><p>inner</p></div>
<hr>
<script>var x = 1;</script>
</body></html>`

	p := &HTMLParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "report.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Quarterly Report" {
		t.Errorf("expected title %q, got %q", "Quarterly Report", doc.Title)
	}

	want := []string{
		schema.Header, schema.Heading, schema.Paragraph, schema.CodeBlock, schema.OrderedList,
		schema.Paragraph, schema.Paragraph, schema.Paragraph, schema.HorizontalRule,
	}
	blocks := doc.Doc.Content
	got := typeNames(blocks)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if text := blocks[0].StringAttr("text"); text != "Acme Corp" {
		t.Errorf("expected header text %q, got %q", "Acme Corp", text)
	}
	if got := blocks[2].TextContent(); got != "First linesecond bold line" {
		t.Errorf("expected collapsed text, got %q", got)
	}
	if blocks[3].StringAttr("language") != "go" || !strings.Contains(blocks[3].TextContent(), "\tx := 1") {
		t.Errorf("expected go code with whitespace kept, got %q", blocks[3].TextContent())
	}
	if start := blocks[4].IntAttr("start"); start != 5 {
		t.Errorf("expected start 5, got %d", start)
	}
	if got := blocks[5].TextContent(); got != "a | b" {
		t.Errorf("expected table row %q, got %q", "a | b", got)
	}
	if got := blocks[6].TextContent(); got != "loose text" {
		t.Errorf("expected loose inline text gathered, got %q", got)
	}
}

func TestHTMLParser_Markers(t *testing.T) {
	input := `<p>one</p>
<hr class="page-break">
<div class="page-number" data-page="7">Page 7</div>
<p>two</p>
<footer class="doc-footer" data-page="8">Page 8</footer>`

	p := &HTMLParser{Schema: schema.New()}
	doc, err := p.Parse(strings.NewReader(input), "m.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{schema.Paragraph, schema.PageBreak, schema.PageNumber, schema.Paragraph, schema.Footer}
	got := typeNames(doc.Doc.Content)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if page := doc.Doc.Content[2].IntAttr("page"); page != 7 {
		t.Errorf("expected page 7, got %d", page)
	}
	if page := doc.Doc.Content[4].IntAttr("page"); page != 8 {
		t.Errorf("expected footer page 8, got %d", page)
	}
}

func TestHTMLParser_MarkersWithoutSchemaSupport(t *testing.T) {
	s := schema.Without(schema.PageBreak, schema.PageNumber)
	nodes, err := ParseFragment("html", `<p>a</p><hr class="page-break"><div class="page-number" data-page="2">Page 2</div>`, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := typeNames(nodes); len(got) != 1 || got[0] != schema.Paragraph {
		t.Errorf("expected markers dropped, got %v", got)
	}
}
