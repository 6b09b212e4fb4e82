package observe

import (
	"context"
	"time"
)

// CheckFunc is the signature Middleware wraps: one probe execution reduced
// to its telemetry outcome.
type CheckFunc func(ctx context.Context, meta ProbeMeta) Outcome

// Middleware wraps probe execution with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a CheckFunc safe for concurrent use.
//   - Context: the span context is propagated to the wrapped function.
//   - Ownership: the outcome is returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced by
// no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Wrap instruments fn.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, meta ProbeMeta) Outcome {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		out := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, out)
		m.metrics.RecordProbe(ctx, meta, duration, out)

		fields := []Field{
			{Key: "status", Value: out.Status},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		if out.Message != "" {
			fields = append(fields, Field{Key: "message", Value: out.Message})
		}

		logger := m.logger.WithProbe(meta)
		if out.Unhealthy {
			if out.Err != nil {
				fields = append(fields, Field{Key: "error", Value: out.Err.Error()})
			}
			logger.Warn(ctx, "probe unhealthy", fields...)
		} else {
			logger.Debug(ctx, "probe completed", fields...)
		}

		return out
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
