package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

// JSONParser reads the JSON tree the JSON exporter writes. A bare list of
// blocks is wrapped in a document.
type JSONParser struct {
	Schema *doctree.Schema
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	out := &Document{Title: titleFrom(filename)}
	if n, err := p.Schema.NodeFromJSON(data); err == nil {
		if n.Type.Name == schema.Doc {
			out.Doc = n
		} else {
			out.Doc = schema.NewDoc(p.Schema, n)
		}
		return out, nil
	}
	nodes, err := p.Schema.NodesFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	out.Doc = schema.NewDoc(p.Schema, nodes...)
	return out, nil
}
