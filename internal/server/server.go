// Package server exposes the layout pipeline over HTTP for a browser
// presentation surface.
//
// The server lays out one resource file and keeps the result in memory.
// It never fetches or applies cluster resources.
//
//	GET  /healthz             liveness
//	GET  /api/layout          current positioned graph and report
//	POST /api/layout/reload   re-read the resource file
//	GET  /api/nodes/{id}      one node
//	POST /api/resolve         resolve a proposed drag position
//	GET  /metrics             prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/pipeline"
)

// Server serves one resource file.
type Server struct {
	runner  *pipeline.Runner
	source  string
	metrics http.Handler
	log     *log.Logger

	mu      sync.RWMutex
	current *pipeline.Result
}

// New creates a server for the resource file at source. metrics may be nil.
func New(runner *pipeline.Runner, source string, metrics http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, source: source, metrics: metrics, log: logger}
}

// Reload re-runs the pipeline over the resource file and replaces the
// served layout. On error the previous layout is kept.
func (s *Server) Reload(ctx context.Context) error {
	res, err := s.runner.RunFile(ctx, s.source)
	if err != nil {
		return err
	}
	s.Set(res)
	return nil
}

// Set replaces the served layout.
func (s *Server) Set(res *pipeline.Result) {
	s.mu.Lock()
	s.current = res
	s.mu.Unlock()
}

func (s *Server) snapshot() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleGetLayout)
		r.Post("/layout/reload", s.handleReload)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Post("/resolve", s.handleResolve)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("serving layout", "addr", addr, "source", s.source)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

type ctxKey struct{}

const requestIDHeader = "X-Request-Id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "id", RequestID(r.Context()), "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Code:      string(code),
		Message:   errs.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidResource, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeConflict:
		return http.StatusConflict
	case errs.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.snapshot() == nil {
		status = "loading"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	res := s.snapshot()
	if res == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Code:      "NOT_READY",
			Message:   "layout has not been computed yet",
			RequestID: RequestID(r.Context()),
		})
		return nil, false
	}
	return res, true
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	n, found := res.Graph.Node(id)
	if !found {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "node %q not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

type resolveRequest struct {
	Node string  `json:"node"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	// Commit stores the resolved position so later requests see it.
	Commit bool `json:"commit"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid resolve request"))
		return
	}
	if req.Node == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "node is required"))
		return
	}

	res, ok := s.ready(w, r)
	if !ok {
		return
	}
	moved, rr, err := s.runner.Resolve(r.Context(), res.Graph, req.Node, graph.Position{X: req.X, Y: req.Y})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Commit {
		s.commit(res, moved)
	}
	s.writeJSON(w, http.StatusOK, rr)
}

// commit swaps in the moved graph unless another request replaced the
// layout in the meantime.
func (s *Server) commit(base *pipeline.Result, moved *graph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != base {
		return
	}
	next := *base
	next.Graph = moved
	s.current = &next
}
