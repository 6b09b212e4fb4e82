package config

import (
	"github.com/jonwraymond/healthops/auth"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

// AggregatorConfig returns the aggregator settings. DisableCache maps to a
// negative TTL.
func (c *Config) AggregatorConfig() health.AggregatorConfig {
	ttl := c.Health.CacheTTL.Duration
	if c.Health.DisableCache {
		ttl = -1
	}
	return health.AggregatorConfig{
		CacheTTL:       ttl,
		DefaultTimeout: c.Health.DefaultTimeout.Duration,
		Parallel:       c.Health.Parallel,
		MaxConcurrency: c.Health.MaxConcurrency,
	}
}

// FreshLimiterConfig returns the limiter settings for fresh=1 requests.
func (c *Config) FreshLimiterConfig() resilience.RateLimiterConfig {
	return resilience.RateLimiterConfig{
		Rate:  c.Server.FreshRate,
		Burst: c.Server.FreshBurst,
	}
}

// AuthConfig returns the authenticator settings.
func (c *Config) AuthConfig() auth.Config {
	keys := make([]auth.KeyConfig, 0, len(c.Auth.APIKeys))
	for _, k := range c.Auth.APIKeys {
		keys = append(keys, auth.KeyConfig{
			ID:        k.ID,
			Key:       k.Key,
			Principal: k.Principal,
			ExpiresAt: k.ExpiresAt,
		})
	}

	cfg := auth.Config{
		APIKeys:      keys,
		APIKeyHeader: c.Auth.APIKeyHeader,
	}
	if c.Auth.JWT.Secret != "" {
		cfg.JWT = auth.JWTConfig{
			Secret:   []byte(c.Auth.JWT.Secret),
			Issuer:   c.Auth.JWT.Issuer,
			Audience: c.Auth.JWT.Audience,
			Leeway:   c.Auth.JWT.Leeway.Duration,
		}
	}
	return cfg
}

// ObserveConfig returns the telemetry settings.
func (c *Config) ObserveConfig() observe.Config {
	tracing := c.Telemetry.TracingExporter
	metrics := c.Telemetry.MetricsExporter
	return observe.Config{
		ServiceName: c.Service.Name,
		Version:     c.Service.Version,
		Tracing: observe.TracingConfig{
			Enabled:   tracing != "" && tracing != "none",
			Exporter:  tracing,
			SamplePct: c.Telemetry.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  metrics != "" && metrics != "none",
			Exporter: metrics,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Logging.Level,
			File: observe.FileConfig{
				Path:       c.Logging.File,
				MaxSizeMB:  c.Logging.MaxSizeMB,
				MaxBackups: c.Logging.MaxBackups,
				MaxAgeDays: c.Logging.MaxAgeDays,
				Compress:   c.Logging.Compress,
			},
		},
	}
}
