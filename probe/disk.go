package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/jonwraymond/healthops/health"
)

// DefaultDiskTimeout is the disk probe deadline.
const DefaultDiskTimeout = 2 * time.Second

// DiskConfig configures a Disk probe.
type DiskConfig struct {
	Options

	// Path is a path on the filesystem to inspect.
	// Default: "/"
	Path string

	// WarningThreshold is the used ratio above which the probe is degraded.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the used ratio above which the probe is unhealthy.
	// Default: 0.95
	CriticalThreshold float64
}

// Disk checks filesystem usage against thresholds.
type Disk struct {
	Base
	path     string
	warning  float64
	critical float64
	usage    func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDisk creates a disk probe.
func NewDisk(cfg DiskConfig) (*Disk, error) {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.WarningThreshold == 0 {
		cfg.WarningThreshold = 0.8
	}
	if cfg.CriticalThreshold == 0 {
		cfg.CriticalThreshold = 0.95
	}
	if cfg.WarningThreshold <= 0 || cfg.WarningThreshold >= cfg.CriticalThreshold || cfg.CriticalThreshold > 1 {
		return nil, ErrInvalidThreshold
	}
	return &Disk{
		Base:     newBase(cfg.Options, "disk", DefaultDiskTimeout, false),
		path:     cfg.Path,
		warning:  cfg.WarningThreshold,
		critical: cfg.CriticalThreshold,
		usage:    disk.UsageWithContext,
	}, nil
}

// Check reads filesystem usage.
func (d *Disk) Check(ctx context.Context) health.Result {
	u, err := d.usage(ctx, d.path)
	if err != nil {
		return health.Unhealthy("Disk usage unavailable", err)
	}

	ratio := u.UsedPercent / 100
	meta := map[string]any{
		"path":          d.path,
		"total_bytes":   u.Total,
		"free_bytes":    u.Free,
		"used_bytes":    u.Used,
		"usage_percent": health.Round3(u.UsedPercent),
	}
	switch {
	case ratio >= d.critical:
		return health.Unhealthy("Disk usage critical",
			fmt.Errorf("probe: disk %s at %.1f%%", d.path, u.UsedPercent)).WithMetadata(meta)
	case ratio >= d.warning:
		return health.Degraded("Disk usage high").WithMetadata(meta)
	default:
		return health.Healthy("Disk usage normal").WithMetadata(meta)
	}
}

var _ health.Probe = (*Disk)(nil)
