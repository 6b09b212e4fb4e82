package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonwraymond/healthops/resilience"
)

// ReadinessGroup is the group served by the readiness endpoint.
const ReadinessGroup = "readiness"

// HandlerOption configures the health HTTP handlers.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	freshLimiter *resilience.RateLimiter
}

// WithFreshLimiter throttles requests carrying fresh=1. Requests over the
// limit get 429.
func WithFreshLimiter(rl *resilience.RateLimiter) HandlerOption {
	return func(c *handlerConfig) {
		c.freshLimiter = rl
	}
}

func applyHandlerOptions(opts []HandlerOption) handlerConfig {
	var c handlerConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// setHealthHeaders marks the response as uncacheable and unindexable.
func setHealthHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Robots-Tag", "noindex, nofollow")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	setHealthHeaders(w)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func reportCode(rep Report) int {
	if rep.Healthy() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// PingHandler answers liveness probes without running any probe.
func PingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "up",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HealthHandler serves the full report. The group query parameter filters
// probes; fresh=1 bypasses the cache.
func HealthHandler(agg *Aggregator, opts ...HandlerOption) http.HandlerFunc {
	cfg := applyHandlerOptions(opts)
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var runOpts []RunOption
		if group := query.Get("group"); group != "" {
			runOpts = append(runOpts, WithGroup(group))
		}
		if query.Get("fresh") == "1" {
			if cfg.freshLimiter != nil && !cfg.freshLimiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": resilience.ErrRateLimitExceeded.Error(),
				})
				return
			}
			runOpts = append(runOpts, WithoutCache())
		}

		rep := agg.RunAll(r.Context(), runOpts...)
		writeJSON(w, reportCode(rep), rep)
	}
}

// ReadinessHandler serves the report restricted to ReadinessGroup.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := agg.RunAll(r.Context(), WithGroup(ReadinessGroup))
		writeJSON(w, reportCode(rep), rep)
	}
}

// CheckHandler runs one probe directly. name extracts the probe name from
// the request, so any router can supply it.
func CheckHandler(agg *Aggregator, name func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		probeName := name(r)
		result, ok := agg.Check(r.Context(), probeName)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "unknown probe: " + probeName,
			})
			return
		}

		code := http.StatusOK
		if result.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, result)
	}
}

// RegisterHandlers mounts the health endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator, opts ...HandlerOption) {
	mux.HandleFunc("GET /ping", PingHandler())
	mux.HandleFunc("GET /health", HealthHandler(agg, opts...))
	mux.HandleFunc("GET /ready", ReadinessHandler(agg))
	mux.HandleFunc("GET /health/checks/{name}", CheckHandler(agg, func(r *http.Request) string {
		return r.PathValue("name")
	}))
}
