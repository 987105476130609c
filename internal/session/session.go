// Package session keeps live documents for the HTTP API: each session owns
// an editor, its pagination controller and its page counter.
package session

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/editor"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/schema"
)

// Session is one open document.
type Session struct {
	mu sync.Mutex

	ID          string
	Filename    string
	Title       string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	editor     *editor.Editor
	controller *paginate.Controller
	closed     bool
}

// Editor returns the live editor.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Controller returns the pagination controller.
func (s *Session) Controller() *paginate.Controller { return s.controller }

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// close stops pagination. It is safe to call more than once.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.controller.Close()
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID          string              `json:"session_id"`
	Filename    string              `json:"filename"`
	Title       string              `json:"title"`
	ContentHash string              `json:"content_hash,omitempty"`
	Version     uint64              `json:"version"`
	Blocks      int                 `json:"blocks"`
	Pages       int                 `json:"pages"`
	Height      float64             `json:"height"`
	Width       float64             `json:"width"`
	State       string              `json:"state"`
	Passes      int                 `json:"passes"`
	LongPauses  int                 `json:"long_pauses"`
	NextPage    int                 `json:"next_page"`
	LastPass    paginate.PassResult `json:"last_pass"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	doc := s.editor.Document()
	pages := 1
	doc.Descendants(func(n *doctree.Node, _ int, _ *doctree.Node) bool {
		if n.Type.Name == schema.PageBreak {
			pages++
		}
		return !n.IsTextblock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		Filename:    s.Filename,
		Title:       s.Title,
		ContentHash: s.ContentHash,
		Version:     s.editor.Version(),
		Blocks:      len(doc.Content),
		Pages:       pages,
		Height:      s.editor.RenderedHeight(),
		Width:       s.editor.Width(),
		State:       s.controller.State().String(),
		Passes:      s.controller.Passes(),
		LongPauses:  s.controller.LongPauses(),
		NextPage:    s.controller.PageContext().Peek(),
		LastPass:    s.controller.LastResult(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
