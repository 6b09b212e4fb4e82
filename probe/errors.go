package probe

import "errors"

// Sentinel errors for probe construction and unexpected responses.
var (
	ErrMissingDSN        = errors.New("probe: database dsn is required")
	ErrMissingURL        = errors.New("probe: url is required")
	ErrInvalidURL        = errors.New("probe: url must be absolute http or https")
	ErrMissingBucket     = errors.New("probe: bucket is required")
	ErrMissingTable      = errors.New("probe: table is required")
	ErrNilClient         = errors.New("probe: client is nil")
	ErrUnexpectedResult  = errors.New("probe: unexpected query result")
	ErrUnexpectedReply   = errors.New("probe: unexpected ping reply")
	ErrUnexpectedStatus  = errors.New("probe: unexpected status code")
	ErrInvalidThreshold  = errors.New("probe: thresholds must satisfy 0 < warning < critical <= 1")
	ErrUnsupportedDriver = errors.New("probe: unsupported database driver")
)
