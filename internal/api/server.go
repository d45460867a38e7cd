// Package api is the HTTP boundary of the converter. Handlers carry no
// business logic; they adapt requests onto the session and pipeline.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/examtools/examconv/internal/config"
	"github.com/examtools/examconv/internal/llm"
	"github.com/examtools/examconv/internal/pipeline"
)

// Server is the HTTP API server for examconv.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	session      *pipeline.Session
	gateway      *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, session *pipeline.Session, gateway *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		session:      session,
		gateway:      gateway,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/edits", s.handleEdits)
		r.Get("/api/export.csv", s.handleExportCSV)
		r.Get("/api/export.xlsx", s.handleExportXLSX)
		r.Get("/api/models", s.handleModels)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Get("/api/debug/signals", s.handleDebugSignals)
		r.Get("/api/debug/outputs", s.handleDebugOutputs)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.cfg.DefaultModel,
		"allowed": s.cfg.AllowedModels,
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gateway.Stats().Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
