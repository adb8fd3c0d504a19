package diag

import (
	"net"
	"time"

	"github.com/KilimcininKorOglu/sonda/internal/discover"
)

// DefaultPublicResolver is the fixed well-known resolver probed after the
// configured DNS servers.
const DefaultPublicResolver = "8.8.8.8"

// Config holds the configuration for one diagnostic run.
type Config struct {
	// InfoOnly reports the network snapshot and skips probing entirely.
	// It takes precedence over Quiet.
	InfoOnly bool

	// Quiet suppresses the snapshot in the report. Discovery still runs
	// because the DNS server list feeds the probe targets.
	Quiet bool

	// Targets are the user-supplied hosts or IPs, probed last in the
	// order given.
	Targets []string

	// Timeout bounds each probe's wait for a reply.
	Timeout time.Duration

	// PublicResolver overrides the fixed well-known resolver address.
	PublicResolver string

	// Discovery configures address discovery.
	Discovery discover.Config

	// OnSnapshot is called once after discovery, before any probing
	// (streaming output).
	OnSnapshot func(snapshot *discover.Snapshot)

	// OnResult is called after each probe target completes (streaming
	// output).
	OnResult func(result *Result)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        1 * time.Second,
		PublicResolver: DefaultPublicResolver,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 100*time.Millisecond {
		return ErrInvalidTimeout
	}
	if net.ParseIP(c.PublicResolver) == nil {
		return ErrInvalidPublicResolver
	}
	return nil
}
