package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docpager/internal/config"
	"github.com/dgallion1/docpager/internal/doctree"
	"github.com/dgallion1/docpager/internal/editor"
	"github.com/dgallion1/docpager/internal/layout"
	"github.com/dgallion1/docpager/internal/paginate"
	"github.com/dgallion1/docpager/internal/parser"
	"github.com/dgallion1/docpager/internal/schema"
)

// ErrTooManySessions is returned by Create when MaxSessions are open.
var ErrTooManySessions = errors.New("session: too many open sessions")

const maxCleanupInterval = 5 * time.Minute

// Manager opens, tracks and expires sessions.
type Manager struct {
	store  *Store
	schema *doctree.Schema
	stats  *paginate.PassStats
	log    *slog.Logger
	cfg    config.Config

	createMu sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewManager creates a manager. stats may be shared with the stats endpoint.
func NewManager(cfg config.Config, stats *paginate.PassStats, log *slog.Logger) *Manager {
	if stats == nil {
		stats = paginate.NewPassStats(cfg.PassStatsWindow)
	}
	return &Manager{
		store:  NewStore(cfg.SessionTTL),
		schema: schema.New(),
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches the TTL cleanup loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	interval := min(m.cfg.SessionTTL, maxCleanupInterval)
	if interval <= 0 {
		interval = maxCleanupInterval
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop and closes every session.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	for _, sess := range m.store.All() {
		m.store.Delete(sess.ID)
		sess.close()
	}
}

func (m *Manager) cleanup() {
	for _, sess := range m.store.Cleanup() {
		sess.close()
		m.log.Info("session expired", "session_id", sess.ID)
	}
}

// Create parses an upload and opens a session on it. The first pagination
// pass is scheduled, not run, before Create returns. width <= 0 uses the
// configured viewport width.
func (m *Manager) Create(filename, title string, data []byte, width float64) (*Session, error) {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	if m.store.Len() >= m.cfg.MaxSessions {
		m.cleanup()
		if m.store.Len() >= m.cfg.MaxSessions {
			return nil, fmt.Errorf("%w (%d)", ErrTooManySessions, m.cfg.MaxSessions)
		}
	}

	p, err := parser.ForFile(filename, m.schema)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = m.cfg.PDFFallbackPdftotext
	}
	parsed, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if title != "" {
		parsed.Title = title
	}

	opts := m.cfg.Layout()
	if width > 0 {
		opts.Width = width
	}
	engine, err := layout.NewEngine(opts)
	if err != nil {
		return nil, err
	}
	ed := editor.New(m.schema, parsed.Doc, engine)

	id := NewID()
	log := m.log.With("session_id", id)
	ctrl := paginate.NewController(ed,
		paginate.WithOptions(m.cfg.Pagination()),
		paginate.WithLogger(log),
		paginate.WithPageContext(paginate.BeginSession(1)),
		paginate.WithStats(m.stats),
	)
	ctrl.Attach(ed)

	now := time.Now()
	sess := &Session{
		ID:          id,
		Filename:    filename,
		Title:       parsed.Title,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		editor:      ed,
		controller:  ctrl,
	}
	m.store.Put(sess)
	ctrl.Trigger(paginate.EventUpdate)

	log.Info("session created", "filename", filename, "blocks", len(parsed.Doc.Content), "bytes", len(data))
	return sess, nil
}

// Get returns a session by ID, or nil.
func (m *Manager) Get(id string) *Session {
	return m.store.Get(id)
}

// Close ends a session. It reports whether the session existed.
func (m *Manager) Close(id string) bool {
	sess := m.store.Delete(id)
	if sess == nil {
		return false
	}
	sess.close()
	m.log.Info("session closed", "session_id", id)
	return true
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return m.store.Len()
}

// Schema is the schema every session's documents use.
func (m *Manager) Schema() *doctree.Schema {
	return m.schema
}

// Stats returns the pass statistics shared by all sessions.
func (m *Manager) Stats() *paginate.PassStats {
	return m.stats
}
