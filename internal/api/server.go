package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docpager/internal/config"
	"github.com/dgallion1/docpager/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docpager.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Manager, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocpagerAPIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/document", s.handleDocument)
			r.Get("/export", s.handleExport)

			r.Post("/paste", s.handlePaste)
			r.Post("/drop", s.handleDrop)
			r.Post("/edits", s.handleEdit)
			r.Post("/resize", s.handleResize)
			r.Post("/page-break", s.handlePageBreak)
			r.Post("/paginate", s.handlePaginate)
		})

		r.Get("/api/stats/pagination", s.handlePaginationStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
