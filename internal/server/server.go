// Package server exposes the compile trigger over HTTP for the dashboard.
// One compilation at a time: a trigger while a run is in progress is rejected
// with 409 rather than queued, so two runs can never race on the output files.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/config"
	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/snapshot"
)

// Runner is the part of the compiler the server needs.
type Runner interface {
	Run(ctx context.Context) (*domain.CompileRun, error)
}

// Server handles the trigger and status endpoints.
type Server struct {
	compiler Runner
	runStore archive.RunStore
	busy     atomic.Bool
	log      zerolog.Logger
}

// Options for creating a Server.
type Options struct {
	Compiler Runner

	// RunStore backs the /runs endpoint. Optional.
	RunStore archive.RunStore

	Log zerolog.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		compiler: opts.Compiler,
		runStore: opts.RunStore,
		log:      opts.Log.With().Str("component", "server").Logger(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/compile", s.handleCompile).Methods(http.MethodPost)
	r.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks serving the API until the listener fails.
func (s *Server) ListenAndServe(cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout.Std(),
		WriteTimeout: cfg.WriteTimeout.Std(),
	}
	s.log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// compileResponse is the terminal status of one triggered run.
type compileResponse struct {
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Run    *domain.CompileRun `json:"run,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if !s.busy.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, compileResponse{
			Status: "rejected",
			Error:  "a compilation is already in progress",
		})
		return
	}
	defer s.busy.Store(false)

	run, err := s.compiler.Run(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("compile run failed")
		resp := compileResponse{Status: "failed", Error: err.Error(), Run: run}
		// Hero table written but portfolio failed: partial, not a plain failure.
		if run != nil && run.HeroWritten {
			resp.Status = "partial"
		}
		status := http.StatusInternalServerError
		if errors.Is(err, snapshot.ErrSourceNotFound) {
			status = http.StatusFailedDependency
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{Status: "ok", Run: run})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runStore == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run archive not configured"})
		return
	}
	runs, err := s.runStore.GetRecent(r.Context(), 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
