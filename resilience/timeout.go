package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the deadline wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 10 seconds
	Timeout time.Duration
}

// Timeout enforces a hard deadline on an operation. When the deadline
// expires the caller returns immediately; the operation keeps running in its
// own goroutine until it observes the cancelled context.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new deadline wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs op with the configured deadline.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	err, callErr := Call(ctx, t.config.Timeout, op)
	if callErr != nil {
		return callErr
	}
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// Call runs op under a deadline of d and returns its value. If the deadline
// expires first, Call returns ErrTimeout without waiting for op; if the parent
// context is cancelled, it returns the context error. The abandoned goroutine
// writes into a buffered channel, so it never blocks after Call returns.
func Call[T any](ctx context.Context, d time.Duration, op func(context.Context) T) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// ExecuteWithTimeout is a convenience function to run an operation with timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
