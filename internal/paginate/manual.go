package paginate

import (
	"github.com/dgallion1/docpager/internal/doctree"
)

// InsertPageBreak places a pageBreak/pageNumber pair after the top-level
// block containing pos. It reports false, without error, when pos lies
// outside the document.
func InsertPageBreak(view View, pc *Context, pos int) (bool, error) {
	markers, err := lookupMarkers(view.Schema())
	if err != nil {
		return false, err
	}
	doc := view.Document()
	at, ok := doc.ResolveAfterTopLevel(pos)
	if !ok {
		return false, nil
	}
	tr := doctree.NewTransaction(doc).
		Insert(at, markers.pageBreak.Create(nil)).
		Insert(at+1, markers.pageNumber.Create(map[string]any{"page": pc.Next()}))
	if err := tr.Err(); err != nil {
		return false, err
	}
	if err := view.Dispatch(tr); err != nil {
		return false, err
	}
	return true, nil
}
