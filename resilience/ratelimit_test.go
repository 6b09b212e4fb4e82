package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})

	if rl.config.Rate != 1 {
		t.Errorf("Rate = %f, want 1", rl.config.Rate)
	}
	if rl.config.Burst != 5 {
		t.Errorf("Burst = %d, want 5", rl.config.Burst)
	}
	if rl.config.MaxWait != time.Second {
		t.Errorf("MaxWait = %v, want 1s", rl.config.MaxWait)
	}
}

func TestRateLimiter_AllowBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("Allow() = false on attempt %d, want true", i)
		}
	}
	if rl.Allow() {
		t.Error("Allow() = true after burst exhausted, want false")
	}
}

func TestRateLimiter_AllowN(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 5})

	if !rl.AllowN(3) {
		t.Error("AllowN(3) = false, want true")
	}
	if rl.AllowN(3) {
		t.Error("AllowN(3) = true with 2 tokens left, want false")
	}
	if !rl.AllowN(2) {
		t.Error("AllowN(2) = false, want true")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1000, Burst: 1})

	rl.Allow()
	time.Sleep(10 * time.Millisecond)

	if !rl.Allow() {
		t.Error("Allow() = false after refill, want true")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	tests := []struct {
		name    string
		config  RateLimiterConfig
		ctx     func() (context.Context, context.CancelFunc)
		wantErr error
	}{
		{
			name:   "token arrives in time",
			config: RateLimiterConfig{Rate: 1000, Burst: 1, MaxWait: 100 * time.Millisecond},
			ctx:    func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
		},
		{
			name:    "max wait exceeded",
			config:  RateLimiterConfig{Rate: 0.1, Burst: 1, MaxWait: 10 * time.Millisecond},
			ctx:     func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			wantErr: ErrRateLimitExceeded,
		},
		{
			name:   "context already cancelled",
			config: RateLimiterConfig{Rate: 0.1, Burst: 1, MaxWait: time.Second},
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.config)
			rl.Allow()

			ctx, cancel := tt.ctx()
			defer cancel()

			err := rl.Wait(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Wait() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimiter_Execute(t *testing.T) {
	t.Run("without wait", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})
		op := func(context.Context) error { return nil }

		if err := rl.Execute(context.Background(), op); err != nil {
			t.Errorf("first Execute() error = %v", err)
		}
		if err := rl.Execute(context.Background(), op); !errors.Is(err, ErrRateLimitExceeded) {
			t.Errorf("second Execute() error = %v, want ErrRateLimitExceeded", err)
		}
	})

	t.Run("with wait", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Rate:        1000,
			Burst:       1,
			WaitOnLimit: true,
			MaxWait:     100 * time.Millisecond,
		})
		rl.Allow()

		if err := rl.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
			t.Errorf("Execute() error = %v", err)
		}
	})
}

func TestRateLimiter_Tokens(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 10})

	if got := rl.Tokens(); got < 9.9 {
		t.Errorf("initial Tokens() = %f, want ~10", got)
	}

	rl.Allow()
	rl.Allow()

	if got := rl.Tokens(); got < 7.9 || got > 8.1 {
		t.Errorf("Tokens() after 2 allows = %f, want ~8", got)
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 50})

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 50 {
		t.Errorf("allowed = %d, want 50", got)
	}
}
