// Package probe sends single ICMP echo requests and classifies the outcome.
package probe

import (
	"context"
)

// Status is the outcome of one reachability check. The set is closed;
// every probe terminates in exactly one of these values and never in an
// error returned to the caller.
type Status int

const (
	// StatusOK means a correlated echo reply arrived within the timeout
	StatusOK Status = iota
	// StatusFailed means the attempt completed without a successful reply
	StatusFailed
	// StatusNoCapability means the environment cannot send echo packets at all
	StatusNoCapability
	// StatusNoPermission means this process lacks privilege for ICMP sockets
	StatusNoPermission
	// StatusResolveFail means the target never yielded a usable address
	StatusResolveFail
	// StatusError is the catch-all for unclassified faults during the attempt
	StatusError
)

// String returns the report token for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusNoCapability:
		return "NO_CAPABILITY"
	case StatusNoPermission:
		return "NO_PERMISSION"
	case StatusResolveFail:
		return "RESOLVE_FAIL"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Reachable reports whether the status indicates a successful round trip.
func (s Status) Reachable() bool {
	return s == StatusOK
}

// Prober is the capability provider for echo probes. Availability is
// determined once at construction; callers consult Available before
// resolving or probing so that an incapable environment is reported
// uniformly across a whole run.
type Prober interface {
	// Available reports whether the environment can send echo packets.
	Available() bool

	// Probe sends one echo request to the given IP literal and waits up
	// to the prober's timeout for a correlated reply. The address family
	// is taken from the literal itself.
	Probe(ctx context.Context, address string) Status
}
