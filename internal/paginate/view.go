// Package paginate keeps a live document split into fixed-height pages by
// inserting and pruning pageBreak/pageNumber marker pairs.
package paginate

import (
	"errors"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/schema"
)

var (
	// ErrMissingMarkerTypes means the view's schema cannot build markers.
	ErrMissingMarkerTypes = errors.New("paginate: schema lacks pageBreak or pageNumber")

	// ErrStaleTransaction is returned by View.Dispatch when the document
	// changed after the transaction was started.
	ErrStaleTransaction = errors.New("paginate: document changed since transaction began")
)

// Coords is the vertical extent of a document position in pixels.
type Coords struct {
	Top    float64
	Bottom float64
}

// View is the rendered document the engine measures and mutates.
type View interface {
	RenderedHeight() float64
	CoordsAt(pos int) (Coords, error)
	Document() *doctree.Node
	Schema() *doctree.Schema

	// Dispatch commits tr. It must reject, without side effects, a
	// transaction whose Before is not the current document.
	Dispatch(tr *doctree.Transaction) error
}

// EventKind names the changes that can make pagination stale.
type EventKind string

const (
	EventPaste  EventKind = "paste"
	EventDrop   EventKind = "drop"
	EventUpdate EventKind = "update"
	EventResize EventKind = "resize"
)

type Event struct {
	Kind EventKind
}

// EventSource delivers view events. The returned func removes the
// subscription.
type EventSource interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

type markerTypes struct {
	pageBreak  *doctree.NodeType
	pageNumber *doctree.NodeType
}

func lookupMarkers(s *doctree.Schema) (markerTypes, error) {
	m := markerTypes{
		pageBreak:  s.Node(schema.PageBreak),
		pageNumber: s.Node(schema.PageNumber),
	}
	if m.pageBreak == nil || m.pageNumber == nil {
		return markerTypes{}, ErrMissingMarkerTypes
	}
	return m, nil
}
