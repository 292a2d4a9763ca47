package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/quartermaster/internal/logging"
	"github.com/ogulcanaydogan/quartermaster/pkg/model"
)

// RunRequest is the body of POST /api/v1/run. An empty army list means all.
type RunRequest struct {
	Armies []string `json:"armies,omitempty"`
	DryRun bool     `json:"dry_run,omitempty"`
}

// Runner executes one supply cycle.
type Runner func(ctx context.Context, req RunRequest) (*model.RunSummary, error)

// RunLister reads the run history.
type RunLister interface {
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.RunRecord, error)
}

// ErrUnknownArmy is returned by a Runner for armies not in the config.
var ErrUnknownArmy = errors.New("unknown army")

// Server exposes health, run history and a run trigger.
type Server struct {
	runner  Runner
	runs    RunLister
	running sync.Mutex
	token   string
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates an API server.
func NewServer(runner Runner, runs RunLister, logger *slog.Logger) *Server {
	s := &Server{
		runner: runner,
		runs:   runs,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	s.mux.HandleFunc("POST /api/v1/run", s.handleRun)
}

// WithToken makes POST /api/v1/run require "Authorization: Bearer <token>".
func (s *Server) WithToken(token string) *Server {
	s.token = token
	return s
}

// IsLoopback reports whether a listen address only accepts local connections.
func IsLoopback(listen string) bool {
	host, _, err := net.SplitHostPort(listen)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) authorized(r *http.Request) bool {
	if s.token == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) == 1
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	filter := model.RunFilter{
		Army:   q.Get("army"),
		Status: model.RunStatus(q.Get("status")),
		Limit:  50,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid since: want RFC3339", http.StatusBadRequest)
			return
		}
		filter.Since = since
	}

	records, err := s.runs.ListRuns(ctx, filter)
	if err != nil {
		s.logger.Error("list runs", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.RunRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="quartermaster"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if !s.running.TryLock() {
		http.Error(w, "a run is already in progress", http.StatusConflict)
		return
	}
	defer s.running.Unlock()

	logger := s.logger.With("request_id", uuid.New().String())
	logger.Info("run triggered", "armies", req.Armies, "dry_run", req.DryRun)

	// The run outlives a disconnected client so no army is left half done.
	ctx := logging.NewContext(context.WithoutCancel(r.Context()), logger)
	summary, err := s.runner(ctx, req)
	switch {
	case errors.Is(err, ErrUnknownArmy):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		logger.Error("run failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
