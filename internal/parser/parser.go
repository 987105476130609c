package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// ErrUnsupportedFormat is returned for extensions and fragment formats no
// parser handles.
var ErrUnsupportedFormat = errors.New("parser: unsupported format")

// Document is a parsed upload.
type Document struct {
	Title string
	Doc   *doctree.Node
}

// Parser converts raw document bytes into a document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".json":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, s *doctree.Schema) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{Schema: s}, nil
	case ".md", ".markdown":
		return &MarkdownParser{Schema: s}, nil
	case ".csv":
		return &CSVParser{Schema: s}, nil
	case ".html", ".htm":
		return &HTMLParser{Schema: s}, nil
	case ".pdf":
		return &PDFParser{Schema: s, FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{Schema: s}, nil
	case ".json":
		return &JSONParser{Schema: s}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFragment parses a paste or drop payload into block nodes.
// Formats are html, md (or markdown), text and json.
func ParseFragment(format, content string, s *doctree.Schema) ([]*doctree.Node, error) {
	switch strings.ToLower(format) {
	case "html":
		return htmlFragment(content, s)
	case "md", "markdown":
		doc, err := (&MarkdownParser{Schema: s}).Parse(strings.NewReader(content), "")
		if err != nil {
			return nil, err
		}
		return doc.Doc.Content, nil
	case "", "text", "txt":
		return textBlocks(content, s)
	case "json":
		nodes, err := s.NodesFromJSON([]byte(content))
		if err != nil {
			return nil, fmt.Errorf("parse json fragment: %w", err)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func titleFrom(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// paragraphs builds one paragraph per non-empty text.
func paragraphs(s *doctree.Schema, texts []string) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, schema.NewParagraph(s, t))
	}
	return out
}
