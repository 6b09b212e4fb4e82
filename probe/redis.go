package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthops/health"
)

// DefaultRedisTimeout is the Redis probe deadline.
const DefaultRedisTimeout = 3 * time.Second

// RedisConfig configures a Redis probe.
type RedisConfig struct {
	Options

	// Addr is host:port.
	// Default: "localhost:6379"
	Addr string

	Password string
	DB       int

	// DialTimeout bounds connection setup.
	// Default: 2 seconds
	DialTimeout time.Duration
}

// RedisClient is the subset of the go-redis client the probe uses.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Redis checks a Redis server with PING. It keeps one client across
// checks, drops it after a failure and dials again on the next check.
type Redis struct {
	Base
	dial func() RedisClient

	mu     sync.Mutex
	client RedisClient
}

// NewRedis creates a Redis probe.
func NewRedis(cfg RedisConfig) *Redis {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	return NewRedisWithDialer(cfg.Options, func() RedisClient {
		return redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			PoolSize:     1,
			MaxRetries:   -1,
			ReadTimeout:  cfg.DialTimeout,
			WriteTimeout: cfg.DialTimeout,
		})
	})
}

// NewRedisWithDialer creates a Redis probe that obtains clients from dial.
func NewRedisWithDialer(opts Options, dial func() RedisClient) *Redis {
	return &Redis{Base: newBase(opts, "redis", DefaultRedisTimeout, false), dial: dial}
}

// Check sends PING and expects PONG.
func (r *Redis) Check(ctx context.Context) health.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		r.client = r.dial()
	}

	reply, err := r.client.Ping(ctx).Result()
	if err != nil {
		r.reset()
		return health.Unhealthy("Redis connection failed", err)
	}
	if reply != "PONG" {
		r.reset()
		return health.Unhealthy("Redis ping failed", fmt.Errorf("%w: %q", ErrUnexpectedReply, reply))
	}
	return health.Healthy("Redis operational")
}

// reset drops the client. The caller holds r.mu.
func (r *Redis) reset() {
	if r.client != nil {
		_ = r.client.Close()
		r.client = nil
	}
}

// Close releases the current client.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

var _ health.Probe = (*Redis)(nil)
