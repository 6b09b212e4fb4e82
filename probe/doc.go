// Package probe provides health.Probe implementations for common service
// dependencies: SQL databases, Redis, HTTP endpoints, S3 buckets, DynamoDB
// tables, NATS connections and local disks.
//
// Every probe reports failures as results, never as errors or panics, and
// honours the context deadline set by the aggregator. Probes are configured
// through a shared Options value whose zero fields take per-variant
// defaults.
package probe
