package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProbeMeta describes a probe for telemetry purposes.
type ProbeMeta struct {
	Name     string        // Probe name (required)
	Critical bool          // Whether failure makes the service unhealthy
	Groups   []string      // Probe groups (optional)
	Timeout  time.Duration // Probe deadline (optional)
}

// SpanName returns the deterministic span name for this probe.
// Format: health.probe.<name>
func (m ProbeMeta) SpanName() string {
	return "health.probe." + m.Name
}

// Outcome is the telemetry view of one probe execution.
type Outcome struct {
	Status    string // healthy|degraded|unhealthy
	Unhealthy bool
	Message   string
	Err       error
}

func (m ProbeMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("probe.name", m.Name),
		attribute.Bool("probe.critical", m.Critical),
	}
	if len(m.Groups) > 0 {
		attrs = append(attrs, attribute.StringSlice("probe.groups", m.Groups))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with probe span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a probe execution.
	StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the outcome.
	EndSpan(span trace.Span, out Outcome)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	if meta.Timeout > 0 {
		attrs = append(attrs, attribute.Int64("probe.timeout_ms", meta.Timeout.Milliseconds()))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan marks unhealthy outcomes as errors. Degraded spans stay Ok.
func (t *tracerImpl) EndSpan(span trace.Span, out Outcome) {
	span.SetAttributes(attribute.String("probe.status", out.Status))
	if out.Unhealthy {
		span.SetStatus(codes.Error, out.Message)
		if out.Err != nil {
			span.RecordError(out.Err)
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, out Outcome) {
	span.End()
}
