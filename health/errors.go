package health

import "errors"

var (
	// ErrProbeFailed indicates a probe reported a failure.
	ErrProbeFailed = errors.New("health: probe failed")

	// ErrProbeTimeout indicates a probe exceeded its deadline.
	ErrProbeTimeout = errors.New("health: probe timed out")

	// ErrProbePanic indicates a probe panicked during Check.
	ErrProbePanic = errors.New("health: probe panicked")

	// ErrNilProbe indicates a nil probe was passed to NewAggregator.
	ErrNilProbe = errors.New("health: probe is nil")

	// ErrDuplicateProbe indicates two probes share a name.
	ErrDuplicateProbe = errors.New("health: duplicate probe name")

	// ErrEmptyProbeName indicates a probe has an empty name.
	ErrEmptyProbeName = errors.New("health: probe name is required")
)
