package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/MimeLyc/ref-sub-corrector/internal/persistence"
)

// runRecordStore exposes the stored outcomes of completed correction runs
type runRecordStore interface {
	LoadRunRecords(ctx context.Context, jobID string) ([]persistence.RunRecord, error)
}

type Server struct {
	queue *jobs.Queue
	runs  runRecordStore

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithRunRecordStore(store runRecordStore) Option {
	return func(s *Server) {
		s.runs = store
	}
}

func NewServer(queue *jobs.Queue, opts ...Option) *Server {
	s := &Server{
		queue: queue,
		mux:   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/stream", s.handleJobStream)
	s.mux.HandleFunc("/api/jobs/", s.handleJobDetailRoutes)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
	})
}
