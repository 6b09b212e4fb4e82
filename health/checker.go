package health

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Status represents the health status of a probe or of a whole report.
type Status int

const (
	// StatusHealthy indicates the dependency is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the dependency is functioning but with issues.
	// A degraded probe never makes a report unhealthy.
	StatusDegraded
	// StatusUnhealthy indicates the dependency is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// ParseStatus parses the string form produced by String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "healthy":
		return StatusHealthy, nil
	case "degraded":
		return StatusDegraded, nil
	case "unhealthy":
		return StatusUnhealthy, nil
	default:
		return StatusUnhealthy, fmt.Errorf("health: unknown status %q", s)
	}
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form of a status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Result contains the outcome of one probe execution.
type Result struct {
	// Name is the name of the probe that produced the result.
	Name string

	// Status is the health status.
	Status Status

	// Message provides additional context about the status.
	Message string

	// Metadata contains arbitrary data about the check.
	Metadata map[string]any

	// Duration is the wall-clock time of the execution, measured by the
	// aggregator around the probe.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is the underlying failure, if any. It is never serialized.
	Error error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithMetadata adds metadata to a result.
func (r Result) WithMetadata(metadata map[string]any) Result {
	r.Metadata = metadata
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// IsUnhealthy reports whether the result status is unhealthy.
func (r Result) IsUnhealthy() bool {
	return r.Status == StatusUnhealthy
}

type resultJSON struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Duration float64        `json:"duration"`
	Metadata map[string]any `json:"metadata"`
}

// MarshalJSON encodes the result with its duration in seconds, rounded to
// three decimals. Missing metadata is encoded as an empty object.
func (r Result) MarshalJSON() ([]byte, error) {
	metadata := r.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return json.Marshal(resultJSON{
		Name:     r.Name,
		Status:   r.Status,
		Message:  r.Message,
		Duration: Seconds(r.Duration),
		Metadata: metadata,
	})
}

// UnmarshalJSON decodes a result produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{
		Name:     raw.Name,
		Status:   raw.Status,
		Message:  raw.Message,
		Duration: time.Duration(raw.Duration * float64(time.Second)),
		Metadata: raw.Metadata,
	}
	return nil
}

// Probe is the capability every dependency check implements.
//
// Contract:
//   - Check must not panic and must not leak failures other than through the
//     returned Result: every failure mode becomes a StatusUnhealthy result.
//   - Check must be safe to call repeatedly. A probe holding a reusable
//     connection must drop it on failure and reconnect on the next call.
//   - Name, Timeout, Critical and Groups must be stable for the lifetime of
//     the probe.
type Probe interface {
	// Name returns the unique name of this probe.
	Name() string

	// Timeout returns the deadline for one execution. Zero or negative means
	// the aggregator default applies.
	Timeout() time.Duration

	// Critical reports whether an unhealthy result makes the report unhealthy.
	Critical() bool

	// Groups returns the groups this probe belongs to. An empty set means the
	// probe belongs to every group.
	Groups() []string

	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// InGroup reports whether p takes part in a run filtered by group.
func InGroup(p Probe, group string) bool {
	groups := p.Groups()
	if len(groups) == 0 {
		return true
	}
	return slices.Contains(groups, group)
}

// ProbeOption configures a ProbeFunc.
type ProbeOption func(*ProbeFunc)

// WithTimeout sets the probe deadline.
func WithTimeout(d time.Duration) ProbeOption {
	return func(p *ProbeFunc) {
		p.timeout = d
	}
}

// WithCritical marks the probe as critical.
func WithCritical(critical bool) ProbeOption {
	return func(p *ProbeFunc) {
		p.critical = critical
	}
}

// WithGroups sets the groups the probe belongs to.
func WithGroups(groups ...string) ProbeOption {
	return func(p *ProbeFunc) {
		p.groups = slices.Clone(groups)
	}
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc struct {
	name     string
	timeout  time.Duration
	critical bool
	groups   []string
	fn       func(context.Context) Result
}

// NewProbe creates a new ProbeFunc.
func NewProbe(name string, fn func(context.Context) Result, opts ...ProbeOption) *ProbeFunc {
	p := &ProbeFunc{name: name, fn: fn}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name of this probe.
func (f *ProbeFunc) Name() string {
	return f.name
}

// Timeout returns the probe deadline.
func (f *ProbeFunc) Timeout() time.Duration {
	return f.timeout
}

// Critical reports whether the probe is critical.
func (f *ProbeFunc) Critical() bool {
	return f.critical
}

// Groups returns the probe groups.
func (f *ProbeFunc) Groups() []string {
	return f.groups
}

// Check performs the health check.
func (f *ProbeFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}

var _ Probe = (*ProbeFunc)(nil)
