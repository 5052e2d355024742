package preflight

import (
	"context"
	"fmt"
	"net"
	"time"

	"shorts/internal/config"
	"shorts/internal/services"
)

const msgUnreachable = "Unable to reach YouTube. Check your internet connection and try again."

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Reachability probes TCP connectivity to the source platform.
type Reachability struct {
	Enabled bool
	Address string
	Timeout time.Duration
	Dialer  Dialer
}

// NewReachability builds a probe from the [reachability] section.
func NewReachability(cfg *config.Config) *Reachability {
	return &Reachability{
		Enabled: cfg.Reachability.Enabled,
		Address: cfg.ReachabilityAddress(),
		Timeout: cfg.ReachabilityTimeout(),
		Dialer:  &net.Dialer{},
	}
}

// Check dials Address and closes the connection. A disabled probe always passes.
func (r *Reachability) Check(ctx context.Context) error {
	if r == nil || !r.Enabled {
		return nil
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := r.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", r.Address)
	if err != nil {
		return services.Fail(services.ErrServiceUnavailable, "reachability", msgUnreachable, err)
	}
	_ = conn.Close()
	return nil
}

// Result renders the probe as a status check.
func (r *Reachability) Result(ctx context.Context) Result {
	name := "Source reachability"
	if err := r.Check(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%v)", r.Address, err)}
	}
	return Result{Name: name, Passed: true, Detail: r.Address}
}
