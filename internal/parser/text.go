package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// defaultMaxLineBytes bounds a single line of an uploaded text file.
const defaultMaxLineBytes = 1024 * 1024

// TextParser handles plain text files. Blank lines separate paragraphs;
// single newlines become hard breaks.
type TextParser struct {
	Schema *doctree.Schema

	// MaxLineBytes is the longest accepted line. Zero means 1 MiB.
	MaxLineBytes int
}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	maxLine := p.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	var paras []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paras = append(paras, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paras = append(paras, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	return &Document{
		Title: titleFrom(filename),
		Doc:   schema.NewDoc(p.Schema, paragraphs(p.Schema, paras)...),
	}, nil
}

// textBlocks parses an in-memory payload, so any line length fits.
func textBlocks(content string, s *doctree.Schema) ([]*doctree.Node, error) {
	p := &TextParser{Schema: s, MaxLineBytes: len(content) + 1}
	doc, err := p.Parse(strings.NewReader(content), "")
	if err != nil {
		return nil, fmt.Errorf("parse text fragment: %w", err)
	}
	return doc.Doc.Content, nil
}
