package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// CSVParser handles CSV files. The header row becomes a heading and every
// data row a paragraph of "column: value" pairs.
type CSVParser struct {
	Schema *doctree.Schema
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	out := &Document{Title: titleFrom(filename)}
	if len(records) == 0 {
		out.Doc = schema.NewDoc(p.Schema)
		return out, nil
	}

	headers := records[0]
	blocks := []*doctree.Node{schema.NewHeading(p.Schema, 2, strings.Join(headers, ", "))}

	for _, row := range records[1:] {
		var text strings.Builder
		for j, cell := range row {
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
			if j < len(row)-1 {
				text.WriteString(", ")
			}
		}
		blocks = append(blocks, paragraphs(p.Schema, []string{text.String()})...)
	}

	out.Doc = schema.NewDoc(p.Schema, blocks...)
	return out, nil
}
