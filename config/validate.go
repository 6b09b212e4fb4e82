package config

import (
	"fmt"
	"slices"
)

var (
	validLevels           = []string{"debug", "info", "warn", "error"}
	validTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	validMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	validDrivers          = []string{"postgres", "postgresql", "sqlite", "sqlite3"}
)

// Validate reports the first invalid setting, naming its key.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("%w: service.name is required", ErrInvalid)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("%w: server.address is required", ErrInvalid)
	}
	if c.Server.FreshRate < 0 || c.Server.FreshBurst < 0 {
		return fmt.Errorf("%w: server.fresh_rate and server.fresh_burst must not be negative", ErrInvalid)
	}
	if c.Health.MaxConcurrency < 0 {
		return fmt.Errorf("%w: health.max_concurrency must not be negative", ErrInvalid)
	}
	if c.Health.CacheTTL.Duration < 0 {
		return fmt.Errorf("%w: health.cache_ttl must not be negative", ErrInvalid)
	}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	if !slices.Contains(validTracingExporters, c.Telemetry.TracingExporter) {
		return fmt.Errorf("%w: telemetry.tracing_exporter %q", ErrInvalid, c.Telemetry.TracingExporter)
	}
	if !slices.Contains(validMetricsExporters, c.Telemetry.MetricsExporter) {
		return fmt.Errorf("%w: telemetry.metrics_exporter %q", ErrInvalid, c.Telemetry.MetricsExporter)
	}
	if c.Telemetry.SamplePct < 0 || c.Telemetry.SamplePct > 1 {
		return fmt.Errorf("%w: telemetry.sample_pct must be within [0, 1]", ErrInvalid)
	}
	return c.Checks.validate()
}

func (c *ChecksConfig) validate() error {
	if c.Database.On(true) && c.Database.DSN != "" && !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("%w: checks.database.driver %q", ErrInvalid, c.Database.Driver)
	}
	for i, h := range c.HTTP {
		if h.On(true) && h.URL == "" {
			return fmt.Errorf("%w: checks.http[%d].url is required", ErrInvalid, i)
		}
	}
	for i, d := range c.Disk {
		if d.WarningThreshold < 0 || d.WarningThreshold > 1 || d.CriticalThreshold < 0 || d.CriticalThreshold > 1 {
			return fmt.Errorf("%w: checks.disk[%d] thresholds must be within [0, 1]", ErrInvalid, i)
		}
	}
	return nil
}
