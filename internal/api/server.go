package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/convert"
	"github.com/dgallion1/docslice/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docslice.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	converter    *convert.Client
	parseSem     chan struct{}
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. converter may be nil
// when no conversion service is configured.
func NewServer(orch *pipeline.Orchestrator, converter *convert.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		converter:    converter,
		parseSem:     make(chan struct{}, max(cfg.MaxConcurrentParse, 1)),
		log:          log,
		cfg:          cfg,
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

	// Authenticated endpoints when an API key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/parse/async", s.handleParseAsync)
		r.Post("/api/parse/batch", s.handleParseBatch)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/split", s.handleSplit)
		r.Post("/api/detect", s.handleDetect)
		r.Get("/api/families", s.handleFamilies)
		r.Get("/api/stats/convert", s.handleConvertStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
