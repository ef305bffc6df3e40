// Package api exposes the analysis service over HTTP. Runs are accepted
// asynchronously: POST returns immediately with a run id and the workflow
// completes in the background.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/internal/store"
)

// Runner executes one analysis.
type Runner interface {
	Run(ctx context.Context, input model.RawInput) *model.AnalysisResult
}

// Server holds the HTTP handler dependencies.
type Server struct {
	store  store.Store
	runner Runner

	// runTimeout bounds each background workflow execution.
	runTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithRunTimeout overrides the background run deadline.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// NewServer builds a Server over its collaborators.
func NewServer(st store.Store, runner Runner, opts ...Option) *Server {
	s := &Server{
		store:      st,
		runner:     runner,
		runTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with CORS configured for the given origins.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeInput(w http.ResponseWriter, r *http.Request) (model.RawInput, bool) {
	var req model.RawInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return req, false
	}
	// An empty profile is legal; downstream selection falls back to the
	// Custom profile defaults.
	return req, true
}

// handleAnalyze runs the workflow inline and returns the finished result.
// The run is persisted like an async one.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInput(w, r)
	if !ok {
		return
	}

	run, err := s.store.CreateRun(r.Context(), req)
	if err != nil {
		zap.L().Error("create run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create run")
		return
	}
	if err := s.store.UpdateRunStatus(r.Context(), run.ID, model.RunStatusRunning); err != nil {
		zap.L().Error("mark run running failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	result := s.runner.Run(r.Context(), req)
	result.RunID = run.ID

	if err := s.store.UpdateRunResult(r.Context(), run.ID, result); err != nil {
		zap.L().Error("persist run result failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInput(w, r)
	if !ok {
		return
	}

	run, err := s.store.CreateRun(r.Context(), req)
	if err != nil {
		zap.L().Error("create run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create run")
		return
	}

	// Detached from the request context so the workflow survives the
	// client disconnecting.
	go s.executeRun(run.ID, req)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     run.ID,
		"status": string(run.Status),
	})
}

func (s *Server) executeRun(runID string, input model.RawInput) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	if err := s.store.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
		zap.L().Error("mark run running failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	result := s.runner.Run(ctx, input)
	result.RunID = runID

	if err := s.store.UpdateRunResult(ctx, runID, result); err != nil {
		zap.L().Error("persist run result failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	zap.L().Info("run complete",
		zap.String("run_id", runID),
		zap.Bool("ok", result.OK()),
	)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("get run failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
