package probe

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

type fakeRedis struct {
	reply  string
	err    error
	closed bool
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult(f.reply, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

// scriptedDialer hands out one fake client per dial.
type scriptedDialer struct {
	mu      sync.Mutex
	clients []*fakeRedis
	dials   int
}

func (d *scriptedDialer) dial() RedisClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.clients[min(d.dials, len(d.clients)-1)]
	d.dials++
	return c
}

func TestRedis_Check(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeRedis
		wantStatus  health.Status
		wantMessage string
		wantReset   bool
	}{
		{"pong", &fakeRedis{reply: "PONG"}, health.StatusHealthy, "Redis operational", false},
		{"wrong reply", &fakeRedis{reply: "LOADING"}, health.StatusUnhealthy, "Redis ping failed", true},
		{"connection error", &fakeRedis{err: errors.New("dial tcp: refused")}, health.StatusUnhealthy, "Redis connection failed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &scriptedDialer{clients: []*fakeRedis{tt.client}}
			p := NewRedisWithDialer(Options{}, d.dial)

			r := p.Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", r.Status, tt.wantStatus)
			}
			if r.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", r.Message, tt.wantMessage)
			}
			if tt.client.closed != tt.wantReset {
				t.Errorf("client closed = %v, want %v", tt.client.closed, tt.wantReset)
			}
		})
	}
}

func TestRedis_ReconnectsAfterFailure(t *testing.T) {
	broken := &fakeRedis{err: errors.New("connection reset")}
	good := &fakeRedis{reply: "PONG"}
	d := &scriptedDialer{clients: []*fakeRedis{broken, good}}
	p := NewRedisWithDialer(Options{}, d.dial)

	if r := p.Check(context.Background()); !r.IsUnhealthy() {
		t.Fatal("first Check() healthy, want unhealthy")
	}
	for range 3 {
		if r := p.Check(context.Background()); r.Status != health.StatusHealthy {
			t.Fatalf("Check() = %v, want healthy", r.Status)
		}
	}
	if d.dials != 2 {
		t.Errorf("dials = %d, want 2 (one reconnect, then reuse)", d.dials)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !good.closed {
		t.Error("Close() did not close the client")
	}
}

func TestNewRedis_Defaults(t *testing.T) {
	p := NewRedis(RedisConfig{})
	defer p.Close()

	if p.Name() != "redis" {
		t.Errorf("Name() = %q, want redis", p.Name())
	}
	if p.Timeout() != DefaultRedisTimeout {
		t.Errorf("Timeout() = %v, want %v", p.Timeout(), DefaultRedisTimeout)
	}
	if p.Critical() {
		t.Error("Critical() = true, want false")
	}
}
