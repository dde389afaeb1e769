package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/spending-maps/internal/config"
	"github.com/couchcryptid/spending-maps/internal/spendingmap"
)

// MapBuilder builds a job's map on demand.
type MapBuilder interface {
	Build(ctx context.Context, job config.Job) (*spendingmap.Result, error)
}

// Server exposes health, readiness, metrics and map rendering endpoints.
type Server struct {
	httpServer *http.Server
	builder    MapBuilder
	jobs       map[string]config.Job
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /maps and
// /maps/{name} routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, builder MapBuilder, jobs []config.Job, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		builder: builder,
		jobs:    make(map[string]config.Job, len(jobs)),
		logger:  logger,
	}
	for _, j := range jobs {
		s.jobs[j.Name] = j
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /maps", s.handleListMaps)
	mux.HandleFunc("GET /maps/{name}", s.handleMap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "jobs", len(s.jobs))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type mapEntry struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Level string `json:"level"`
	Path  string `json:"path"`
}

func (s *Server) handleListMaps(w http.ResponseWriter, _ *http.Request) {
	entries := make([]mapEntry, 0, len(s.jobs))
	for _, j := range s.jobs {
		entries = append(entries, mapEntry{Name: j.Name, Title: j.Title, Level: string(j.Level), Path: "/maps/" + j.Name})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int { return strings.Compare(a.Name, b.Name) })
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"maps": entries})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	job, ok := s.jobs[name]
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown map: " + name})
		return
	}

	res, err := s.builder.Build(r.Context(), job)
	if err != nil {
		s.logger.Error("map build failed", "job", name, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := res.Map.Render(&buf); err != nil {
		s.logger.Error("map render failed", "job", name, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}
