package paginate

import (
	"fmt"

	"github.com/dgallion1/docpager/internal/doctree"
)

type span struct{ from, to int }

// markerSpans finds every pageBreak together with the pageNumber directly
// after it, in document order.
func markerSpans(parent *doctree.Node, pos int, m markerTypes, out []span) []span {
	for i, child := range parent.Content {
		start := pos
		pos += child.NodeSize()
		if child.Type == m.pageBreak {
			end := pos
			if i+1 < len(parent.Content) && parent.Content[i+1].Type == m.pageNumber {
				end += parent.Content[i+1].NodeSize()
			}
			out = append(out, span{start, end})
			continue
		}
		if child.Type == m.pageNumber || child.IsLeaf() || child.IsTextblock() {
			continue
		}
		out = markerSpans(child, start+1, m, out)
	}
	return out
}

// PruneBreaks removes every pageBreak of doc and its paired pageNumber in
// one transaction started from doc. It returns the number of breaks removed.
func PruneBreaks(view View, doc *doctree.Node) (int, error) {
	markers, err := lookupMarkers(view.Schema())
	if err != nil {
		return 0, err
	}
	spans := markerSpans(doc, 0, markers, nil)
	if len(spans) == 0 {
		return 0, nil
	}

	// Back to front so earlier positions stay valid.
	tr := doctree.NewTransaction(doc)
	for i := len(spans) - 1; i >= 0; i-- {
		tr.Delete(spans[i].from, spans[i].to)
	}
	if err := tr.Err(); err != nil {
		return 0, fmt.Errorf("build break removal: %w", err)
	}
	if err := view.Dispatch(tr); err != nil {
		return 0, err
	}
	return len(spans), nil
}
