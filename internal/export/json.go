package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docpager/internal/doctree"
)

// JSON writes the document tree, readable by Schema.NodeFromJSON.
func JSON(w io.Writer, doc *doctree.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
