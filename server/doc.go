// Package server serves a health aggregator over HTTP with chi.
//
// Routes:
//
//	GET /ping                 liveness, runs no probe
//	GET /health               full report; ?group= filters, ?fresh=1 bypasses the cache
//	GET /ready                report restricted to the readiness group
//	GET /health/checks/{name} one probe, optionally behind auth.Middleware
//	GET /metrics              Prometheus metrics, when enabled
package server
