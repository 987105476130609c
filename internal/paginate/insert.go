package paginate

import (
	"fmt"
	"slices"

	"github.com/dgallion1/docpager/internal/doctree"
)

// pairSize is the span one pageBreak/pageNumber pair adds to the document.
const pairSize = 2

// BreakPositions returns the positions of every pageBreak in doc, ascending.
func BreakPositions(doc *doctree.Node, pageBreak *doctree.NodeType) []int {
	var out []int
	doc.Descendants(func(n *doctree.Node, pos int, _ *doctree.Node) bool {
		if n.Type == pageBreak {
			out = append(out, pos)
		}
		return !n.IsTextblock()
	})
	return out
}

// filterCandidates drops candidates that already carry a break and, when
// minGap is positive, candidates closer than minGap to an existing break or
// to an earlier accepted candidate. The result is ascending.
func filterCandidates(candidates, existing []int, minGap int) []int {
	sorted := slices.Clone(candidates)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var out []int
	for _, pos := range sorted {
		if _, found := slices.BinarySearch(existing, pos); found {
			continue
		}
		if minGap > 0 {
			if tooClose(existing, pos, minGap) {
				continue
			}
			if n := len(out); n > 0 && pos-out[n-1] < minGap {
				continue
			}
		}
		out = append(out, pos)
	}
	return out
}

func tooClose(sorted []int, pos, gap int) bool {
	i, _ := slices.BinarySearch(sorted, pos)
	if i < len(sorted) && sorted[i]-pos < gap {
		return true
	}
	return i > 0 && pos-sorted[i-1] < gap
}

// InsertBreaks inserts a pageBreak followed by a pageNumber before each
// accepted candidate, numbering pages from pc in document order. Candidates
// are positions in doc, and the transaction starts from doc, so the view
// rejects it if the document moved on. All pairs are committed in one
// transaction. It returns the assigned page numbers, or nil when nothing
// needed inserting.
func InsertBreaks(view View, doc *doctree.Node, pc *Context, candidates []int, minGap int) ([]int, error) {
	markers, err := lookupMarkers(view.Schema())
	if err != nil {
		return nil, err
	}
	toInsert := filterCandidates(candidates, BreakPositions(doc, markers.pageBreak), minGap)
	if len(toInsert) == 0 {
		return nil, nil
	}

	tr := doctree.NewTransaction(doc)
	pages := make([]int, 0, len(toInsert))
	offset := 0
	for _, pos := range toInsert {
		page := pc.Next()
		tr.Insert(pos+offset, markers.pageBreak.Create(nil))
		tr.Insert(pos+offset+1, markers.pageNumber.Create(map[string]any{"page": page}))
		pages = append(pages, page)
		offset += pairSize
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("build break insertion: %w", err)
	}
	if err := view.Dispatch(tr); err != nil {
		return nil, err
	}
	return pages, nil
}
