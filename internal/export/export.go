// Package export writes documents, pagination markers included, to the
// formats the parser package reads back.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Formats lists the export formats.
var Formats = []string{"html", "md", "json", "docx", "pdf"}

// Write encodes doc in format.
func Write(w io.Writer, format string, doc *doctree.Node, title string) error {
	switch strings.ToLower(format) {
	case "html", "htm":
		return HTML(w, doc, title)
	case "md", "markdown":
		return Markdown(w, doc)
	case "json":
		return JSON(w, doc)
	case "docx":
		return DOCX(w, doc)
	case "pdf":
		return PDF(w, doc, title)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "html", "htm":
		return "text/html; charset=utf-8"
	case "md", "markdown":
		return "text/markdown; charset=utf-8"
	case "json":
		return "application/json"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}

// FormatFromFilename maps an output filename to its format.
func FormatFromFilename(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// inlineString flattens a textblock. Hard breaks become newlines.
func inlineString(n *doctree.Node) string {
	var sb strings.Builder
	for _, c := range n.Content {
		switch {
		case c.IsText():
			sb.WriteString(c.Text)
		case c.Type.Name == schema.HardBreak:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
