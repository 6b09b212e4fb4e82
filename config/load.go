package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/secret"
)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	envFiles []string
	resolver *secret.Resolver
}

// WithEnvFiles loads the given .env files before parsing. Missing files
// are skipped. Default: ".env"
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) {
		o.envFiles = files
	}
}

// WithResolver replaces the default env and file secret resolver.
func WithResolver(r *secret.Resolver) Option {
	return func(o *loadOptions) {
		o.resolver = r
	}
}

// Load reads, resolves, and validates the config file at path. A missing
// file yields an error wrapping fs.ErrNotExist.
func Load(ctx context.Context, path string, opts ...Option) (*Config, error) {
	o := loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = secret.NewDefaultResolver()
	}

	if err := loadEnvFiles(o.envFiles); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(ctx, data, o.resolver)
}

// Parse decodes and validates a YAML document, resolving secrets with r.
func Parse(ctx context.Context, data []byte, r *secret.Resolver) (*Config, error) {
	if r == nil {
		r = secret.NewDefaultResolver()
	}
	return parse(ctx, data, r)
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	return nil
}

func parse(ctx context.Context, data []byte, r *secret.Resolver) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if err := resolveNode(ctx, &doc, r); err != nil {
			return nil, err
		}
		if err := doc.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveNode runs every string scalar through the resolver. Mapping keys
// are left alone.
func resolveNode(ctx context.Context, n *yaml.Node, r *secret.Resolver) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := resolveNode(ctx, c, r); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			if err := resolveNode(ctx, n.Content[i], r); err != nil {
				return fmt.Errorf("%s: %w", n.Content[i-1].Value, err)
			}
		}
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return nil
		}
		v, err := r.ResolveValue(ctx, n.Value)
		if err != nil {
			return fmt.Errorf("config: line %d: %w", n.Line, err)
		}
		n.Value = v
	}
	return nil
}

// Environment overrides, applied after the file.
const (
	EnvAddress  = "HEALTHOPS_ADDRESS"
	EnvLogLevel = "HEALTHOPS_LOG_LEVEL"
	EnvCacheTTL = "HEALTHOPS_CACHE_TTL"
	EnvParallel = "HEALTHOPS_PARALLEL"
)

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvAddress); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvCacheTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvCacheTTL, err)
		}
		c.Health.CacheTTL = Duration{d}
	}
	if v, ok := os.LookupEnv(EnvParallel); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvParallel, err)
		}
		c.Health.Parallel = b
	}
	return nil
}
