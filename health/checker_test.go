package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusHealthy, StatusDegraded, StatusUnhealthy} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", s.String(), got, err, s)
		}
	}

	if _, err := ParseStatus("sideways"); err == nil {
		t.Error("ParseStatus(sideways) should fail")
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(StatusDegraded)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"degraded"` {
		t.Errorf("Marshal() = %s, want \"degraded\"", data)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"unhealthy"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s != StatusUnhealthy {
		t.Errorf("Unmarshal() = %v, want unhealthy", s)
	}
}

func TestResultConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name   string
		result Result
		status Status
		err    error
	}{
		{"healthy", Healthy("ok"), StatusHealthy, nil},
		{"degraded", Degraded("slow"), StatusDegraded, nil},
		{"unhealthy", Unhealthy("down", cause), StatusUnhealthy, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if tt.result.Error != tt.err {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.err)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	r := Healthy("Redis operational").
		WithMetadata(map[string]any{"addr": "localhost:6379"}).
		WithDuration(123456789 * time.Nanosecond)
	r.Name = "redis"
	r.Error = errors.New("never serialized")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"name":"redis","status":"healthy","message":"Redis operational","duration":0.123,"metadata":{"addr":"localhost:6379"}}`
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}
}

func TestResult_MarshalJSON_NilMetadata(t *testing.T) {
	data, err := json.Marshal(Result{Name: "x", Status: StatusUnhealthy})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	md, ok := raw["metadata"].(map[string]any)
	if !ok || len(md) != 0 {
		t.Errorf("metadata = %v, want empty object", raw["metadata"])
	}
}

func TestInGroup(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		group  string
		want   bool
	}{
		{"no groups matches anything", nil, "web", true},
		{"no groups matches unknown", nil, "nonexistent", true},
		{"member", []string{"web", "readiness"}, "readiness", true},
		{"not member", []string{"worker"}, "web", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe("p", nil, WithGroups(tt.groups...))
			if got := InGroup(p, tt.group); got != tt.want {
				t.Errorf("InGroup() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewProbe_Options(t *testing.T) {
	p := NewProbe("database", func(context.Context) Result {
		return Healthy("Database operational")
	}, WithTimeout(5*time.Second), WithCritical(true), WithGroups("readiness"))

	if p.Name() != "database" {
		t.Errorf("Name() = %q, want database", p.Name())
	}
	if p.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", p.Timeout())
	}
	if !p.Critical() {
		t.Error("Critical() = false, want true")
	}
	if len(p.Groups()) != 1 || p.Groups()[0] != "readiness" {
		t.Errorf("Groups() = %v, want [readiness]", p.Groups())
	}
	if got := p.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("Check() status = %v, want healthy", got.Status)
	}
}
