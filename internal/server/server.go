// Package server exposes plan searches over HTTP.
//
// Routes:
//
//	GET  /healthz              liveness and build information
//	POST /v1/solve             run a search, JSON body {source, target, heuristic, max_iterations, accept_ties}
//	GET  /v1/naive             naive plan, query ?source=&target=
//
// Every search runs in its own session with the request's context, bounded
// by the configured timeout and iteration cap. A search cut short by the
// timeout still answers with the best plan found, marked as not optimal.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/matzehuels/diceplan/internal/config"
	perrors "github.com/matzehuels/diceplan/pkg/errors"
	"github.com/matzehuels/diceplan/pkg/observability"
	"github.com/matzehuels/diceplan/pkg/pipeline"
)

// maxBodyBytes limits request bodies. Solve requests are tiny.
const maxBodyBytes = 1 << 16

// Server serves the diceplan HTTP API.
type Server struct {
	runner  *pipeline.Runner
	cfg     config.ServerConfig
	logger  *log.Logger
	hooks   observability.HTTPHooks
	limiter *rate.Limiter
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks reports requests to h instead of the registered HTTP hooks.
func WithHooks(h observability.HTTPHooks) Option {
	return func(s *Server) {
		if h != nil {
			s.hooks = h
		}
	}
}

// New creates a server running searches through runner. The runner's
// limits are replaced by cfg.Limits.
func New(runner *pipeline.Runner, cfg config.ServerConfig, opts ...Option) *Server {
	runner.Limits = cfg.Limits
	s := &Server{
		runner: runner,
		cfg:    cfg,
		logger: log.Default(),
		hooks:  observability.HTTP(),
	}
	if cfg.RateLimit > 0 {
		burst := max(1, int(cfg.RateLimit))
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/solve", s.handleSolve)
		r.Get("/naive", s.handleNaive)
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is canceled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		d := time.Since(start)
		s.hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, perrors.New(perrors.ErrCodeRateLimited, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
