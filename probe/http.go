package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// DefaultHTTPTimeout is the HTTP probe deadline.
const DefaultHTTPTimeout = 5 * time.Second

// DefaultExpectedStatus lists the codes an HTTP probe accepts by default.
var DefaultExpectedStatus = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}

// HTTPConfig configures an HTTP probe.
type HTTPConfig struct {
	Options

	// URL is the endpoint to GET. Required.
	URL string

	// ExpectedStatus lists accepted status codes.
	// Default: 200, 201, 204
	ExpectedStatus []int

	// Headers are added to every request.
	Headers map[string]string

	// Client performs the request. The probe deadline comes from the
	// context, so the client needs no timeout of its own.
	// Default: &http.Client{}
	Client *http.Client
}

// HTTP checks that an endpoint answers GET with an expected status.
type HTTP struct {
	Base
	url      string
	expected []int
	headers  map[string]string
	client   *http.Client
}

// NewHTTP creates an HTTP probe.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if u, err := url.Parse(cfg.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.URL)
	}
	expected := cfg.ExpectedStatus
	if len(expected) == 0 {
		expected = DefaultExpectedStatus
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{
		Base:     newBase(cfg.Options, "http_endpoint", DefaultHTTPTimeout, false),
		url:      cfg.URL,
		expected: slices.Clone(expected),
		headers:  cfg.Headers,
		client:   client,
	}, nil
}

// Check performs the GET.
func (h *HTTP) Check(ctx context.Context) health.Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return health.Unhealthy("HTTP check failed", err)
	}
	req.Header.Set("User-Agent", "healthops-probe")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return health.Unhealthy("HTTP endpoint unreachable", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	meta := map[string]any{"status_code": resp.StatusCode}
	if !slices.Contains(h.expected, resp.StatusCode) {
		return health.Unhealthy("HTTP endpoint returned unexpected status",
			fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)).WithMetadata(meta)
	}
	return health.Healthy("HTTP endpoint operational").WithMetadata(meta)
}

var _ health.Probe = (*HTTP)(nil)
