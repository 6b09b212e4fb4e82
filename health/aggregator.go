package health

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthops/resilience"
)

const (
	defaultCacheTTL       = time.Second
	defaultProbeTimeout   = 10 * time.Second
	defaultMaxConcurrency = 10

	// coalesceKey identifies the single unfiltered run in the flight group.
	coalesceKey = "all"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// CacheTTL is the freshness window of the unfiltered snapshot.
	// Default: 1 second. A negative value disables the cache.
	CacheTTL time.Duration

	// DefaultTimeout applies to probes whose Timeout is zero or negative.
	// Default: 10 seconds
	DefaultTimeout time.Duration

	// Parallel runs probes concurrently when true. Report order is
	// registration order either way.
	// Default: false
	Parallel bool

	// MaxConcurrency bounds the number of probes running at once in
	// parallel mode.
	// Default: 10
	MaxConcurrency int
}

// snapshot is an immutable unfiltered run. It is replaced as a whole.
type snapshot struct {
	results    []Result
	capturedAt time.Time
}

// Aggregator runs a fixed set of probes and combines their results into a
// Report. It is safe for concurrent use.
type Aggregator struct {
	config   AggregatorConfig
	probes   []Probe
	byName   map[string]Probe
	bulkhead *resilience.Bulkhead

	cache  atomic.Pointer[snapshot]
	flight singleflight.Group
}

// NewAggregator creates an aggregator over probes. The slice is copied;
// the probe set cannot change afterwards.
func NewAggregator(probes []Probe, config ...AggregatorConfig) (*Aggregator, error) {
	var cfg AggregatorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultProbeTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}

	byName := make(map[string]Probe, len(probes))
	for i, p := range probes {
		if p == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilProbe, i)
		}
		name := p.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyProbeName, i)
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProbe, name)
		}
		byName[name] = p
	}

	return &Aggregator{
		config:   cfg,
		probes:   slices.Clone(probes),
		byName:   byName,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.MaxConcurrency}),
	}, nil
}

// RunOption configures a single run.
type RunOption func(*runOptions)

type runOptions struct {
	group    string
	useCache bool
}

// WithGroup restricts the run to probes in group. Probes without groups
// are always included. An empty group means no filter. Filtered runs never
// read or write the cache.
func WithGroup(group string) RunOption {
	return func(o *runOptions) {
		o.group = group
	}
}

// WithoutCache forces probes to execute even when the snapshot is fresh.
// The resulting unfiltered run still replaces the snapshot.
func WithoutCache() RunOption {
	return func(o *runOptions) {
		o.useCache = false
	}
}

func applyRunOptions(opts []RunOption) runOptions {
	o := runOptions{useCache: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Names returns the probe names in registration order.
func (a *Aggregator) Names() []string {
	names := make([]string, len(a.probes))
	for i, p := range a.probes {
		names[i] = p.Name()
	}
	return names
}

// Config returns the effective configuration.
func (a *Aggregator) Config() AggregatorConfig {
	return a.config
}

// RunAll runs the probes and returns the aggregated report.
func (a *Aggregator) RunAll(ctx context.Context, opts ...RunOption) Report {
	start := time.Now()
	o := applyRunOptions(opts)

	var (
		results []Result
		cached  bool
	)
	switch {
	case o.group != "":
		results = a.execute(ctx, a.filter(o.group))
	case !o.useCache:
		results = a.refresh(ctx).results
	default:
		if snap := a.fresh(); snap != nil {
			results, cached = snap.results, true
		} else {
			results = a.coalescedRefresh(ctx).results
		}
	}

	return Report{
		Status:     a.evaluate(results),
		Timestamp:  time.Now().UTC(),
		Duration:   time.Since(start),
		Checks:     slices.Clone(results),
		Statistics: ComputeStatistics(results),
		Cached:     cached,
	}
}

// Status returns the overall status without building a report. A fresh
// snapshot is evaluated as is; otherwise probes execute and the outcome is
// not stored. In sequential mode execution stops at the first critical
// unhealthy probe. Group options are ignored.
func (a *Aggregator) Status(ctx context.Context, opts ...RunOption) Status {
	o := applyRunOptions(opts)
	if o.useCache {
		if snap := a.fresh(); snap != nil {
			return a.evaluate(snap.results)
		}
	}

	if a.config.Parallel {
		return a.evaluate(a.execute(ctx, a.probes))
	}
	for _, p := range a.probes {
		if r := a.runProbe(ctx, p); r.IsUnhealthy() && p.Critical() {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}

// Check runs the named probe directly, bypassing the cache. It reports
// false when no probe has that name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, bool) {
	p, ok := a.byName[name]
	if !ok {
		return Result{}, false
	}
	return a.runProbe(ctx, p), true
}

// evaluate is unhealthy iff a critical probe, looked up by result name,
// reported unhealthy. Degraded results never escalate.
func (a *Aggregator) evaluate(results []Result) Status {
	for _, r := range results {
		if !r.IsUnhealthy() {
			continue
		}
		if p, ok := a.byName[r.Name]; ok && p.Critical() {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}

func (a *Aggregator) fresh() *snapshot {
	if a.config.CacheTTL < 0 {
		return nil
	}
	snap := a.cache.Load()
	if snap == nil || time.Since(snap.capturedAt) >= a.config.CacheTTL {
		return nil
	}
	return snap
}

// refresh executes every probe and stores the outcome as the new snapshot.
func (a *Aggregator) refresh(ctx context.Context) *snapshot {
	snap := &snapshot{results: a.execute(ctx, a.probes)}
	snap.capturedAt = time.Now()
	if a.config.CacheTTL >= 0 {
		a.cache.Store(snap)
	}
	return snap
}

// coalescedRefresh shares one refresh among concurrent callers. The shared
// run is detached from the first caller's cancellation; per-probe deadlines
// still bound it.
func (a *Aggregator) coalescedRefresh(ctx context.Context) *snapshot {
	v, _, _ := a.flight.Do(coalesceKey, func() (any, error) {
		if snap := a.fresh(); snap != nil {
			return snap, nil
		}
		return a.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(*snapshot)
}

func (a *Aggregator) filter(group string) []Probe {
	selected := make([]Probe, 0, len(a.probes))
	for _, p := range a.probes {
		if InGroup(p, group) {
			selected = append(selected, p)
		}
	}
	return selected
}

// execute runs probes and returns their results in input order.
func (a *Aggregator) execute(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))
	if !a.config.Parallel {
		for i, p := range probes {
			results[i] = a.runProbe(ctx, p)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.bulkhead.Acquire(ctx); err != nil {
				r := Unhealthy("probe not started", err)
				r.Name = p.Name()
				results[i] = r
				return
			}
			defer a.bulkhead.Release()
			results[i] = a.runProbe(ctx, p)
		}()
	}
	wg.Wait()
	return results
}

// runProbe executes one probe under its deadline. The result always
// carries the probe name and the duration measured here.
func (a *Aggregator) runProbe(ctx context.Context, p Probe) Result {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = a.config.DefaultTimeout
	}

	start := time.Now()
	result, err := resilience.Call(ctx, timeout, func(ctx context.Context) Result {
		return safeCheck(ctx, p)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrTimeout) {
			result = Unhealthy("probe timed out", ErrProbeTimeout)
		} else {
			result = Unhealthy("probe cancelled", err)
		}
	}

	result.Name = p.Name()
	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return result
}

func safeCheck(ctx context.Context, p Probe) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy("Health check failed", fmt.Errorf("%w: %v", ErrProbePanic, r))
		}
	}()
	return p.Check(ctx)
}
