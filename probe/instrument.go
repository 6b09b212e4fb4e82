package probe

import (
	"context"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// Instrumented wraps a probe with a span, metrics and a log line per check.
type Instrumented struct {
	health.Probe
	meta observe.ProbeMeta
	mw   *observe.Middleware
}

// Instrument wraps p with mw. A nil mw returns p unchanged.
func Instrument(p health.Probe, mw *observe.Middleware) health.Probe {
	if mw == nil {
		return p
	}
	return &Instrumented{
		Probe: p,
		meta: observe.ProbeMeta{
			Name:     p.Name(),
			Critical: p.Critical(),
			Groups:   p.Groups(),
			Timeout:  p.Timeout(),
		},
		mw: mw,
	}
}

// InstrumentAll wraps every probe in probes with mw.
func InstrumentAll(probes []health.Probe, mw *observe.Middleware) []health.Probe {
	out := make([]health.Probe, len(probes))
	for i, p := range probes {
		out[i] = Instrument(p, mw)
	}
	return out
}

// Check runs the wrapped probe inside the middleware.
func (i *Instrumented) Check(ctx context.Context) health.Result {
	var result health.Result
	i.mw.Wrap(func(ctx context.Context, _ observe.ProbeMeta) observe.Outcome {
		result = i.Probe.Check(ctx)
		return Outcome(result)
	})(ctx, i.meta)
	return result
}

// Unwrap returns the wrapped probe.
func (i *Instrumented) Unwrap() health.Probe {
	return i.Probe
}

// Outcome converts a result to its telemetry view.
func Outcome(r health.Result) observe.Outcome {
	return observe.Outcome{
		Status:    r.Status.String(),
		Unhealthy: r.IsUnhealthy(),
		Message:   r.Message,
		Err:       r.Error,
	}
}
