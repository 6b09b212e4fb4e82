package probe

import (
	"slices"
	"time"
)

// Options are the attributes every probe shares. Zero values take the
// variant's defaults.
type Options struct {
	// Name overrides the default probe name.
	Name string

	// Timeout overrides the default probe deadline.
	Timeout time.Duration

	// Critical overrides the default criticality when non-nil.
	Critical *bool

	// Groups lists the groups the probe belongs to. Empty means all.
	Groups []string
}

// Critical returns a pointer to v, for use in Options.
func Critical(v bool) *bool {
	return &v
}

// Base implements the static half of health.Probe.
type Base struct {
	name     string
	timeout  time.Duration
	critical bool
	groups   []string
}

func newBase(opts Options, name string, timeout time.Duration, critical bool) Base {
	if opts.Name != "" {
		name = opts.Name
	}
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if opts.Critical != nil {
		critical = *opts.Critical
	}
	return Base{
		name:     name,
		timeout:  timeout,
		critical: critical,
		groups:   slices.Clone(opts.Groups),
	}
}

// Name returns the probe name.
func (b Base) Name() string { return b.name }

// Timeout returns the probe deadline.
func (b Base) Timeout() time.Duration { return b.timeout }

// Critical reports whether the probe is critical.
func (b Base) Critical() bool { return b.critical }

// Groups returns the probe groups.
func (b Base) Groups() []string { return b.groups }
