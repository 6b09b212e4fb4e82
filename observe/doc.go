// Package observe provides the telemetry used around probe execution:
// OpenTelemetry tracing and metrics, and a zap-backed structured Logger.
//
// An Observer owns the tracer and meter providers built from Config. A
// Middleware combines a Tracer, Metrics and Logger and wraps a CheckFunc so
// every probe execution produces one span, one metrics sample and one log
// entry. Unhealthy outcomes mark the span as an error and log at warn
// level; degraded outcomes do not.
//
// Metrics:
//
//	health.probe.total        counter   every execution
//	health.probe.unhealthy    counter   unhealthy outcomes
//	health.probe.duration_ms  histogram execution time
package observe
