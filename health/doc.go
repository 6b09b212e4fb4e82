// Package health aggregates dependency probes into a service health report.
//
// A Probe checks one dependency and reports a Result: healthy, degraded or
// unhealthy. Probes never return errors; every failure is an unhealthy
// Result.
//
// An Aggregator owns a fixed list of probes. RunAll executes them in
// registration order, each under its own enforced deadline, and returns a
// Report whose status is unhealthy only when a critical probe is unhealthy.
// Degraded results never change the report status.
//
// # Caching
//
// Unfiltered runs are kept as an immutable snapshot for CacheTTL (one second
// by default). Calls inside the window reuse it; concurrent calls on an
// expired snapshot share a single execution. Group-filtered runs neither
// read nor write the snapshot.
//
//	agg, err := health.NewAggregator([]health.Probe{
//	    health.NewProbe("database", checkDB, health.WithCritical(true),
//	        health.WithGroups("readiness")),
//	    health.NewMemoryProbe(health.MemoryProbeConfig{}),
//	})
//	if err != nil {
//	    return err
//	}
//
//	report := agg.RunAll(ctx)
//	ready := agg.RunAll(ctx, health.WithGroup("readiness"))
//	fresh := agg.RunAll(ctx, health.WithoutCache())
//
// # HTTP Endpoints
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//
// mounts /ping, /health, /ready and /health/checks/{name}. Report endpoints
// answer 200 when healthy and 503 otherwise.
package health
