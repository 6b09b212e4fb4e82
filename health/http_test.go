package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jonwraymond/healthops/resilience"
)

func testMux(t *testing.T, probes []Probe, opts ...HandlerOption) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	RegisterHandlers(mux, mustAggregator(t, probes), opts...)
	return mux
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func assertHealthHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	want := map[string]string{
		"Content-Type":           "application/json",
		"X-Robots-Tag":           "noindex, nofollow",
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store, no-cache, must-revalidate, private",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestPingHandler(t *testing.T) {
	rec := serve(PingHandler(), "/ping")

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "up" || body["timestamp"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthHandler_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		critical bool
		wantCode int
		wantBody string
	}{
		{"healthy", StatusHealthy, true, http.StatusOK, "healthy"},
		{"degraded critical", StatusDegraded, true, http.StatusOK, "healthy"},
		{"unhealthy optional", StatusUnhealthy, false, http.StatusOK, "healthy"},
		{"unhealthy critical", StatusUnhealthy, true, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := counted("db", tt.status, WithCritical(tt.critical))
			rec := serve(testMux(t, []Probe{p}), "/health")

			if rec.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantCode)
			}
			assertHealthHeaders(t, rec)

			var rep Report
			if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rep.Status.String() != tt.wantBody {
				t.Errorf("body status = %v, want %v", rep.Status, tt.wantBody)
			}
			if len(rep.Checks) != 1 || rep.Checks[0].Name != "db" {
				t.Errorf("checks = %+v", rep.Checks)
			}
		})
	}
}

func TestHealthHandler_Body(t *testing.T) {
	p, _ := counted("db", StatusHealthy)
	rec := serve(testMux(t, []Probe{p}), "/health")

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"status", "timestamp", "duration", "checks", "statistics"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("body missing %q", key)
		}
	}
	if len(raw) != 5 {
		t.Errorf("body has %d keys, want 5", len(raw))
	}
}

func TestHealthHandler_GroupQuery(t *testing.T) {
	web, _ := counted("web", StatusHealthy, WithGroups("web"))
	worker, _ := counted("worker", StatusHealthy, WithGroups("worker"))
	rec := serve(testMux(t, []Probe{web, worker}), "/health?group=worker")

	var rep Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := names(rep.Checks); !equal(got, []string{"worker"}) {
		t.Errorf("checks = %v, want [worker]", got)
	}
}

func TestHealthHandler_FreshBypassesCache(t *testing.T) {
	p, calls := counted("db", StatusHealthy)
	mux := testMux(t, []Probe{p})

	serve(mux, "/health")
	serve(mux, "/health")
	serve(mux, "/health?fresh=1")

	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestHealthHandler_FreshRateLimited(t *testing.T) {
	p, _ := counted("db", StatusHealthy)
	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 0.001, Burst: 1})
	mux := testMux(t, []Probe{p}, WithFreshLimiter(rl))

	if rec := serve(mux, "/health?fresh=1"); rec.Code != http.StatusOK {
		t.Errorf("first fresh = %d, want 200", rec.Code)
	}
	rec := serve(mux, "/health?fresh=1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second fresh = %d, want 429", rec.Code)
	}
	assertHealthHeaders(t, rec)

	if rec := serve(mux, "/health"); rec.Code != http.StatusOK {
		t.Errorf("cached request = %d, want 200", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	db, _ := counted("database", StatusUnhealthy, WithCritical(true), WithGroups("liveness"))
	cache, _ := counted("redis", StatusHealthy, WithGroups(ReadinessGroup))
	rec := serve(testMux(t, []Probe{db, cache}), "/ready")

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
	assertHealthHeaders(t, rec)

	var rep Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := names(rep.Checks); !equal(got, []string{"redis"}) {
		t.Errorf("checks = %v, want [redis]", got)
	}
}

func TestCheckHandler(t *testing.T) {
	ok, _ := counted("ok", StatusHealthy)
	slow, _ := counted("slow", StatusDegraded)
	down, _ := counted("down", StatusUnhealthy)
	mux := testMux(t, []Probe{ok, slow, down})

	tests := []struct {
		path string
		want int
	}{
		{"/health/checks/ok", http.StatusOK},
		{"/health/checks/slow", http.StatusOK},
		{"/health/checks/down", http.StatusServiceUnavailable},
		{"/health/checks/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(mux, tt.path)
			if rec.Code != tt.want {
				t.Errorf("Status = %d, want %d", rec.Code, tt.want)
			}
			assertHealthHeaders(t, rec)
		})
	}
}

func TestCheckHandler_CustomExtractor(t *testing.T) {
	var calls atomic.Int32
	p := NewProbe("redis", func(context.Context) Result {
		calls.Add(1)
		return Healthy("Redis operational")
	})
	h := CheckHandler(mustAggregator(t, []Probe{p}), func(r *http.Request) string {
		return r.URL.Query().Get("name")
	})

	rec := serve(h, "/check?name=redis")
	if rec.Code != http.StatusOK || calls.Load() != 1 {
		t.Fatalf("Status = %d calls = %d", rec.Code, calls.Load())
	}

	var r Result
	if err := json.NewDecoder(rec.Body).Decode(&r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Name != "redis" || r.Message != "Redis operational" {
		t.Errorf("result = %+v", r)
	}
}
