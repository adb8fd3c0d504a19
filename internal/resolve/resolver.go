// Package resolve turns probe targets into usable network addresses.
package resolve

import (
	"context"
	"net"
)

// ipLookup is the slice of *net.Resolver used here; tests substitute a
// scripted implementation.
type ipLookup interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Resolver resolves target strings. Literals pass through untouched,
// hostnames go to the system resolver with an IPv4 preference. Resolution
// never fails loudly: an unresolvable target simply yields no address.
type Resolver struct {
	lookup ipLookup
}

// New creates a Resolver backed by the system resolver service.
func New() *Resolver {
	return &Resolver{lookup: net.DefaultResolver}
}

// Resolve maps a raw target to its display name and probe address. The
// name is always the raw input; the address is empty when resolution
// failed. IP literals of either family are returned unchanged so the
// probe and the report always see the exact string the user supplied.
func (r *Resolver) Resolve(ctx context.Context, raw string) (name, address string) {
	if ip := net.ParseIP(raw); ip != nil {
		return raw, raw
	}

	ips, err := r.lookup.LookupIP(ctx, "ip", raw)
	if err != nil || len(ips) == 0 {
		return raw, ""
	}

	// Prefer an IPv4 result when the host has both families.
	for _, ip := range ips {
		if ip.To4() != nil {
			return raw, ip.String()
		}
	}

	return raw, ips[0].String()
}
