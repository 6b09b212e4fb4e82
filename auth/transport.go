package auth

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/healthops/observe"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middleware)

type middleware struct {
	logger observe.Logger
	realm  string
}

// WithLogger logs rejected and failed authentications.
func WithLogger(logger observe.Logger) MiddlewareOption {
	return func(m *middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRealm sets the realm advertised in WWW-Authenticate.
// Default: "healthops"
func WithRealm(realm string) MiddlewareOption {
	return func(m *middleware) {
		m.realm = realm
	}
}

// Middleware rejects requests that a does not authenticate with 401 and a
// JSON error body. Authenticated requests carry their Identity in the
// request context.
func Middleware(a Authenticator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{logger: observe.NopLogger(), realm: "healthops"}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := NewAuthRequest(r)

			result, err := a.Authenticate(ctx, req)
			if err != nil {
				m.logger.Error(ctx, "authentication failed",
					observe.Field{Key: "path", Value: req.Resource},
					observe.Field{Key: "error", Value: err})
				writeError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
			if !result.Authenticated {
				m.logger.Warn(ctx, "authentication rejected",
					observe.Field{Key: "path", Value: req.Resource},
					observe.Field{Key: "method", Value: result.Method},
					observe.Field{Key: "error", Value: result.Error})
				msg := ErrInvalidCredentials.Error()
				if result.Error != nil {
					msg = result.Error.Error()
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+m.realm+`"`)
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
