// Package server exposes the analyze pipeline and statistics over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/whomadeit/internal/stats"
	"github.com/abhisek/whomadeit/internal/store"
)

// Service is the application behind the HTTP surface.
type Service interface {
	Analyze(ctx context.Context, text string) (*store.Query, error)
	Stats(ctx context.Context) (*stats.Snapshot, error)
	RecentQueries(ctx context.Context, limit int) ([]store.Query, error)
	Categories(ctx context.Context) ([]store.CategoryCount, error)
	Milestones(ctx context.Context) ([]store.Milestone, error)
}

// Options configures the HTTP server.
type Options struct {
	// CORSOrigins lists allowed origins. "*" allows any origin.
	CORSOrigins []string

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration
}

// Server wraps the HTTP handlers for whomadeit.
type Server struct {
	svc     Service
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New builds a Server and its routes.
func New(svc Service, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{svc: svc, opts: opts, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/queries", s.handleQueries)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/milestones", s.handleMilestones)

	s.handler = chain(mux,
		s.recoverPanics,
		s.logRequests,
		cors(opts.CORSOrigins),
	)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
