package health

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// MemoryProbeConfig configures the heap probe.
type MemoryProbeConfig struct {
	// Name overrides the probe name. Default: "memory"
	Name string

	// Timeout is the probe deadline. Default: 1 second
	Timeout time.Duration

	// Critical marks the probe as critical. Default: false
	Critical bool

	// Groups lists the groups the probe belongs to.
	Groups []string

	// WarningThreshold is the heap usage ratio that triggers degraded status.
	// Value should be between 0 and 1. Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the heap usage ratio that triggers unhealthy status.
	// Value should be between 0 and 1. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the heap budget in bytes. Zero uses the memory obtained
	// from the OS.
	MaxAlloc uint64
}

// MemoryProbe reports heap usage against a budget.
type MemoryProbe struct {
	config MemoryProbeConfig

	// readStats is swapped in tests.
	readStats func(*runtime.MemStats)
}

// NewMemoryProbe creates a heap probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.Name == "" {
		config.Name = "memory"
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = min(config.WarningThreshold+0.1, 0.99)
	}

	return &MemoryProbe{config: config, readStats: runtime.ReadMemStats}
}

// Name returns the probe name.
func (m *MemoryProbe) Name() string { return m.config.Name }

// Timeout returns the probe deadline.
func (m *MemoryProbe) Timeout() time.Duration { return m.config.Timeout }

// Critical reports whether the probe is critical.
func (m *MemoryProbe) Critical() bool { return m.config.Critical }

// Groups returns the probe groups.
func (m *MemoryProbe) Groups() []string { return m.config.Groups }

// Check compares the live heap with the budget.
func (m *MemoryProbe) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	m.readStats(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	if budget == 0 {
		return Healthy("memory stats unavailable")
	}

	ratio := float64(stats.HeapAlloc) / float64(budget)
	metadata := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"heap_in_use":      stats.HeapInuse,
		"budget_bytes":     budget,
		"usage_percent":    Round3(ratio * 100),
		"num_gc":           stats.NumGC,
		"goroutines":       runtime.NumGoroutine(),
	}

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("memory usage critical: %.1f%%", ratio*100), ErrProbeFailed).
			WithMetadata(metadata)
	case ratio >= m.config.WarningThreshold:
		return Degraded(fmt.Sprintf("memory usage high: %.1f%%", ratio*100)).WithMetadata(metadata)
	default:
		return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", ratio*100)).WithMetadata(metadata)
	}
}

var _ Probe = (*MemoryProbe)(nil)
