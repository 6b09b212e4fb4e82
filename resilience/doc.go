// Package resilience provides the execution guards used by the health engine.
//
//   - Timeout and Call: enforce a hard deadline on an operation. On expiry
//     the caller gets ErrTimeout immediately and the operation is abandoned,
//     not killed; it sees a cancelled context and is expected to return.
//
//   - Bulkhead: limits concurrent operations, used to bound parallel probe
//     fan-out.
//
//   - RateLimiter: token bucket over golang.org/x/time/rate, used to throttle
//     requests that bypass the health cache.
//
// # Usage
//
//	res, err := resilience.Call(ctx, 5*time.Second, func(ctx context.Context) health.Result {
//	    return probe.Check(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // mark unhealthy
//	}
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 1, Burst: 5})
//	if !rl.Allow() {
//	    // reject with 429
//	}
package resilience
