package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jonwraymond/healthops/health"
)

// DefaultNATSTimeout is the NATS probe deadline.
const DefaultNATSTimeout = 3 * time.Second

// NATSConn is the subset of *nats.Conn the probe uses.
type NATSConn interface {
	Status() nats.Status
	RTT() (time.Duration, error)
}

// NATS checks a NATS connection owned by the application. A connected
// client with a working round trip is healthy, a reconnecting one is
// degraded and anything else is unhealthy.
type NATS struct {
	Base
	conn NATSConn
}

// NewNATS creates a NATS probe over conn.
func NewNATS(conn NATSConn, opts Options) (*NATS, error) {
	if conn == nil {
		return nil, ErrNilClient
	}
	return &NATS{Base: newBase(opts, "nats", DefaultNATSTimeout, false), conn: conn}, nil
}

// ConnectNATS dials url for a probe that owns its connection. The client
// keeps reconnecting in the background, which the probe reports as
// degraded.
func ConnectNATS(url string, opts Options) (*NATS, *nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("healthops"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("probe: connect nats: %w", err)
	}
	p, err := NewNATS(nc, opts)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return p, nc, nil
}

// Check inspects the connection status and measures a round trip.
func (p *NATS) Check(ctx context.Context) health.Result {
	status := p.conn.Status()
	meta := map[string]any{"status": status.String()}

	switch status {
	case nats.CONNECTED:
	case nats.RECONNECTING, nats.CONNECTING:
		return health.Degraded("NATS reconnecting").WithMetadata(meta)
	default:
		return health.Unhealthy("NATS connection unavailable", fmt.Errorf("%w: %s", ErrUnexpectedResult, status)).
			WithMetadata(meta)
	}

	type rtt struct {
		d   time.Duration
		err error
	}
	done := make(chan rtt, 1)
	go func() {
		d, err := p.conn.RTT()
		done <- rtt{d, err}
	}()

	select {
	case <-ctx.Done():
		return health.Unhealthy("NATS round trip timed out", ctx.Err()).WithMetadata(meta)
	case r := <-done:
		if r.err != nil {
			return health.Unhealthy("NATS round trip failed", r.err).WithMetadata(meta)
		}
		meta["rtt_ms"] = float64(r.d.Microseconds()) / 1000
		return health.Healthy("NATS operational").WithMetadata(meta)
	}
}

var _ health.Probe = (*NATS)(nil)
