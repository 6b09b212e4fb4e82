package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/probe"
)

// probeSet is the probes built from config and the resources they own.
type probeSet struct {
	probes  []health.Probe
	closers []func() error
}

func (s *probeSet) add(p health.Probe, closer func() error) {
	s.probes = append(s.probes, p)
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
}

// Close releases every connection owned by the set.
func (s *probeSet) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func probeOptions(p config.ProbeConfig) probe.Options {
	return probe.Options{
		Name:     p.Name,
		Timeout:  p.Timeout.Duration,
		Critical: p.Critical,
		Groups:   p.Groups,
	}
}

// buildProbes creates the enabled checks in a fixed order: database, redis,
// http, s3, dynamodb, nats, disk, memory. On error, anything already
// opened is closed.
func buildProbes(ctx context.Context, cfg *config.Config, logger observe.Logger) (_ *probeSet, err error) {
	set := &probeSet{}
	defer func() {
		if err != nil {
			_ = set.Close()
		}
	}()
	checks := cfg.Checks

	if db := checks.Database; db.On(true) {
		if db.DSN == "" {
			logger.Warn(ctx, "database check has no dsn, skipping")
		} else {
			p, err := probe.OpenDatabase(probe.DatabaseConfig{
				Options:    probeOptions(db.ProbeConfig),
				Driver:     db.Driver,
				DSN:        db.DSN,
				Connection: db.Connection,
			})
			if err != nil {
				return nil, fmt.Errorf("checks.database: %w", err)
			}
			set.add(p, p.Close)
		}
	}

	if rc := checks.Redis; rc.On(false) {
		p := probe.NewRedis(probe.RedisConfig{
			Options:  probeOptions(rc.ProbeConfig),
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		set.add(p, p.Close)
	}

	for i, hc := range checks.HTTP {
		if !hc.On(true) {
			continue
		}
		p, err := probe.NewHTTP(probe.HTTPConfig{
			Options:        probeOptions(hc.ProbeConfig),
			URL:            hc.URL,
			ExpectedStatus: hc.ExpectedStatus,
			Headers:        hc.Headers,
		})
		if err != nil {
			return nil, fmt.Errorf("checks.http[%d]: %w", i, err)
		}
		set.add(p, nil)
	}

	if sc := checks.S3; sc.On(sc.Bucket != "") {
		awsCfg := awsConfig(sc.AWSCheck)
		awsCfg.UsePathStyle = sc.UsePathStyle
		client, err := probe.NewS3Client(ctx, awsCfg)
		if err != nil {
			return nil, fmt.Errorf("checks.s3: %w", err)
		}
		p, err := probe.NewS3(client, sc.Bucket, probeOptions(sc.ProbeConfig))
		if err != nil {
			return nil, fmt.Errorf("checks.s3: %w", err)
		}
		set.add(p, nil)
	}

	if dc := checks.DynamoDB; dc.On(dc.Table != "") {
		client, err := probe.NewDynamoDBClient(ctx, awsConfig(dc.AWSCheck))
		if err != nil {
			return nil, fmt.Errorf("checks.dynamodb: %w", err)
		}
		p, err := probe.NewDynamoDB(client, dc.Table, probeOptions(dc.ProbeConfig))
		if err != nil {
			return nil, fmt.Errorf("checks.dynamodb: %w", err)
		}
		set.add(p, nil)
	}

	if nc := checks.NATS; nc.On(nc.URL != "") {
		p, conn, err := probe.ConnectNATS(nc.URL, probeOptions(nc.ProbeConfig))
		if err != nil {
			return nil, fmt.Errorf("checks.nats: %w", err)
		}
		set.add(p, func() error {
			conn.Close()
			return nil
		})
	}

	for i, dc := range checks.Disk {
		if !dc.On(true) {
			continue
		}
		p, err := probe.NewDisk(probe.DiskConfig{
			Options:           probeOptions(dc.ProbeConfig),
			Path:              dc.Path,
			WarningThreshold:  dc.WarningThreshold,
			CriticalThreshold: dc.CriticalThreshold,
		})
		if err != nil {
			return nil, fmt.Errorf("checks.disk[%d]: %w", i, err)
		}
		set.add(p, nil)
	}

	if mc := checks.Memory; mc.On(true) {
		set.add(health.NewMemoryProbe(health.MemoryProbeConfig{
			Name:              mc.Name,
			Timeout:           mc.Timeout.Duration,
			Critical:          mc.Critical != nil && *mc.Critical,
			Groups:            mc.Groups,
			WarningThreshold:  mc.WarningThreshold,
			CriticalThreshold: mc.CriticalThreshold,
			MaxAlloc:          mc.MaxAllocBytes,
		}), nil)
	}

	return set, nil
}

func awsConfig(c config.AWSCheck) probe.AWSConfig {
	return probe.AWSConfig{
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	}
}

// newAggregator builds the probes, instruments them with mw, and returns
// the aggregator along with the set to close on exit.
func newAggregator(ctx context.Context, cfg *config.Config, mw *observe.Middleware, logger observe.Logger) (*health.Aggregator, *probeSet, error) {
	set, err := buildProbes(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	agg, err := health.NewAggregator(probe.InstrumentAll(set.probes, mw), cfg.AggregatorConfig())
	if err != nil {
		_ = set.Close()
		return nil, nil, err
	}
	logger.Info(ctx, "probes registered", observe.Field{Key: "probes", Value: agg.Names()})
	return agg, set, nil
}
