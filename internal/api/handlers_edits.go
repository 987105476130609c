package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/parser"
	"github.com/dgallion1/docpager/internal/session"
)

const maxEditBodyBytes = 8 << 20

type fragmentRequest struct {
	Pos     int    `json:"pos"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

type editRequest struct {
	Op      string `json:"op"`
	Pos     int    `json:"pos"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Text    string `json:"text"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

type resizeRequest struct {
	Width float64 `json:"width"`
}

type pageBreakRequest struct {
	Pos int `json:"pos"`
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	s.handleFragment(w, r, false)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	s.handleFragment(w, r, true)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request, drop bool) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req fragmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	nodes, err := parser.ParseFragment(req.Format, req.Content, sess.Editor().Schema())
	if err != nil {
		jsonError(w, err.Error(), editErrorStatus(err))
		return
	}
	if drop {
		err = sess.Editor().Drop(req.Pos, nodes...)
	} else {
		err = sess.Editor().Paste(req.Pos, nodes...)
	}
	if err != nil {
		jsonError(w, err.Error(), editErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req editRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ed := sess.Editor()
	var err error
	switch req.Op {
	case "insert_text":
		err = ed.InsertText(req.Pos, req.Text)
	case "delete":
		err = ed.Delete(req.From, req.To)
	case "append":
		var nodes []*doctree.Node
		nodes, err = parser.ParseFragment(req.Format, req.Content, ed.Schema())
		if err == nil {
			err = ed.Append(nodes...)
		}
	default:
		jsonError(w, "op must be one of insert_text, delete, append", http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), editErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Width <= 0 {
		jsonError(w, "width must be a positive number", http.StatusBadRequest)
		return
	}
	sess.Editor().Resize(req.Width)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePageBreak(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req pageBreakRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inserted, err := sess.Controller().InsertPageBreak(req.Pos)
	if err != nil {
		jsonError(w, err.Error(), editErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inserted": inserted,
		"session":  sess.Snapshot(),
	})
}

// handlePaginate runs any scheduled pass now instead of waiting for the
// debounce.
func (s *Server) handlePaginate(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	ran := sess.Controller().Flush()
	writeJSON(w, http.StatusOK, paginateResponse(ran, sess))
}

func paginateResponse(ran bool, sess *session.Session) map[string]any {
	res := sess.Controller().LastResult()
	out := map[string]any{
		"ran":     ran,
		"result":  res,
		"session": sess.Snapshot(),
	}
	if res.Err != nil {
		out["error"] = res.Err.Error()
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxEditBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func editErrorStatus(err error) int {
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupportedFormat),
		errors.Is(err, doctree.ErrPositionOutOfRange),
		errors.Is(err, doctree.ErrInvalidRange),
		errors.Is(err, doctree.ErrContentNotAllowed),
		errors.Is(err, doctree.ErrUnknownNodeType):
		return http.StatusBadRequest
	case errors.Is(err, paginate.ErrMissingMarkerTypes),
		errors.Is(err, paginate.ErrStaleTransaction):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
