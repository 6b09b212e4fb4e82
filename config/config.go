package config

import "time"

// Config is the root application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Server    ServerConfig    `yaml:"server"`
	Health    HealthConfig    `yaml:"health"`
	Checks    ChecksConfig    `yaml:"checks"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServiceConfig identifies the service in logs and telemetry.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// CORSOrigins enables CORS for the listed origins. "*" allows any.
	CORSOrigins []string `yaml:"cors_origins"`

	// FreshRate and FreshBurst throttle ?fresh=1 requests.
	FreshRate  float64 `yaml:"fresh_rate"`
	FreshBurst int     `yaml:"fresh_burst"`
}

// HealthConfig configures the aggregator.
type HealthConfig struct {
	CacheTTL       Duration `yaml:"cache_ttl"`
	DisableCache   bool     `yaml:"disable_cache"`
	DefaultTimeout Duration `yaml:"default_timeout"`
	Parallel       bool     `yaml:"parallel"`
	MaxConcurrency int      `yaml:"max_concurrency"`
}

// ProbeConfig holds the attributes shared by every check.
type ProbeConfig struct {
	Enabled  *bool    `yaml:"enabled"`
	Name     string   `yaml:"name"`
	Timeout  Duration `yaml:"timeout"`
	Critical *bool    `yaml:"critical"`
	Groups   []string `yaml:"groups"`
}

// On reports whether the check is enabled, falling back to def when the
// file does not say.
func (p ProbeConfig) On(def bool) bool {
	if p.Enabled == nil {
		return def
	}
	return *p.Enabled
}

// ChecksConfig lists the dependency checks.
type ChecksConfig struct {
	Database DatabaseCheck `yaml:"database"`
	Redis    RedisCheck    `yaml:"redis"`
	HTTP     []HTTPCheck   `yaml:"http"`
	S3       S3Check       `yaml:"s3"`
	DynamoDB DynamoDBCheck `yaml:"dynamodb"`
	NATS     NATSCheck     `yaml:"nats"`
	Disk     []DiskCheck   `yaml:"disk"`
	Memory   MemoryCheck   `yaml:"memory"`
}

// DatabaseCheck configures the SQL check.
type DatabaseCheck struct {
	ProbeConfig `yaml:",inline"`
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	Connection  string `yaml:"connection"`
}

// RedisCheck configures the Redis check.
type RedisCheck struct {
	ProbeConfig `yaml:",inline"`
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
}

// HTTPCheck configures one HTTP endpoint check.
type HTTPCheck struct {
	ProbeConfig    `yaml:",inline"`
	URL            string            `yaml:"url"`
	ExpectedStatus []int             `yaml:"expected_status"`
	Headers        map[string]string `yaml:"headers"`
}

// AWSCheck holds the connection settings shared by AWS checks.
type AWSCheck struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// S3Check configures the S3 bucket check.
type S3Check struct {
	ProbeConfig  `yaml:",inline"`
	AWSCheck     `yaml:",inline"`
	Bucket       string `yaml:"bucket"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// DynamoDBCheck configures the DynamoDB table check.
type DynamoDBCheck struct {
	ProbeConfig `yaml:",inline"`
	AWSCheck    `yaml:",inline"`
	Table       string `yaml:"table"`
}

// NATSCheck configures the NATS connection check.
type NATSCheck struct {
	ProbeConfig `yaml:",inline"`
	URL         string `yaml:"url"`
}

// DiskCheck configures one filesystem usage check.
type DiskCheck struct {
	ProbeConfig       `yaml:",inline"`
	Path              string  `yaml:"path"`
	WarningThreshold  float64 `yaml:"warning_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`
}

// MemoryCheck configures the heap usage check.
type MemoryCheck struct {
	ProbeConfig       `yaml:",inline"`
	MaxAllocBytes     uint64  `yaml:"max_alloc_bytes"`
	WarningThreshold  float64 `yaml:"warning_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`
}

// AuthConfig guards the single-probe endpoint.
type AuthConfig struct {
	APIKeys      []APIKey `yaml:"api_keys"`
	APIKeyHeader string   `yaml:"api_key_header"`
	JWT          JWTAuth  `yaml:"jwt"`
}

// APIKey registers one operator key.
type APIKey struct {
	ID        string    `yaml:"id"`
	Key       string    `yaml:"key"`
	Principal string    `yaml:"principal"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// JWTAuth enables bearer tokens signed with Secret.
type JWTAuth struct {
	Secret   string   `yaml:"secret"`
	Issuer   string   `yaml:"issuer"`
	Audience string   `yaml:"audience"`
	Leeway   Duration `yaml:"leeway"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	TracingExporter string  `yaml:"tracing_exporter"`
	SamplePct       float64 `yaml:"sample_pct"`
	MetricsExporter string  `yaml:"metrics_exporter"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{Name: "healthops"},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration{5 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{15 * time.Second},
			FreshRate:       1,
			FreshBurst:      5,
		},
		Health: HealthConfig{
			CacheTTL:       Duration{time.Second},
			DefaultTimeout: Duration{10 * time.Second},
			MaxConcurrency: 10,
		},
		Checks: ChecksConfig{
			Database: DatabaseCheck{Driver: "postgres"},
			Redis:    RedisCheck{Addr: "localhost:6379"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Telemetry: TelemetryConfig{
			TracingExporter: "none",
			SamplePct:       1,
			MetricsExporter: "prometheus",
		},
	}
}
