package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// Config holds HTTP server settings.
type Config struct {
	// Address is the listen address. Default: ":8080"
	Address string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 15 seconds
	ShutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Default: no-op
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAuthenticator guards the single-probe endpoint.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Server) {
		s.authenticator = a
	}
}

// WithCORS enables CORS for origins. A "*" entry allows any origin.
func WithCORS(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithFreshLimiter throttles fresh=1 requests on /health.
func WithFreshLimiter(rl *resilience.RateLimiter) Option {
	return func(s *Server) {
		s.freshLimiter = rl
	}
}

// WithMetrics serves h on /metrics. Pass nil for the Prometheus default
// registry.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		if h == nil {
			h = promhttp.Handler()
		}
		s.metrics = h
	}
}

// Server exposes an aggregator over HTTP.
type Server struct {
	agg           *health.Aggregator
	router        chi.Router
	logger        observe.Logger
	authenticator auth.Authenticator
	corsOrigins   []string
	freshLimiter  *resilience.RateLimiter
	metrics       http.Handler
}

// New creates a Server and registers its routes.
func New(agg *health.Aggregator, opts ...Option) *Server {
	s := &Server{
		agg:    agg,
		router: chi.NewRouter(),
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Router returns the chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if c := s.corsHandler(); c != nil {
		r.Use(c)
	}

	var handlerOpts []health.HandlerOption
	if s.freshLimiter != nil {
		handlerOpts = append(handlerOpts, health.WithFreshLimiter(s.freshLimiter))
	}

	r.Get("/ping", health.PingHandler())
	r.Get("/health", health.HealthHandler(s.agg, handlerOpts...))
	r.Get("/ready", health.ReadinessHandler(s.agg))

	r.Group(func(r chi.Router) {
		if s.authenticator != nil {
			r.Use(auth.Middleware(s.authenticator, auth.WithLogger(s.logger)))
		}
		r.Get("/health/checks/{name}", health.CheckHandler(s.agg, func(r *http.Request) string {
			return chi.URLParam(r, "name")
		}))
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	switch {
	case len(s.corsOrigins) == 0:
		return nil
	case slices.Contains(s.corsOrigins, "*"):
		return cors.AllowAll().Handler
	default:
		return cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", auth.DefaultAPIKeyHeader},
			MaxAge:         300,
		})
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(r.Context(), "request",
			observe.Field{Key: "request_id", Value: middleware.GetReqID(r.Context())},
			observe.Field{Key: "method", Value: r.Method},
			observe.Field{Key: "path", Value: r.URL.Path},
			observe.Field{Key: "status", Value: status},
			observe.Field{Key: "duration_ms", Value: float64(time.Since(start).Microseconds()) / 1000},
		)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	ln, err := net.Listen("tcp", cfg.address())
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", cfg.address(), err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg Config) error {
	srv := &http.Server{
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "listening", observe.Field{Key: "address", Value: ln.Addr().String()})
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info(ctx, "shutdown complete")
	return nil
}

func (c Config) address() string {
	if c.Address == "" {
		return ":8080"
	}
	return c.Address
}
