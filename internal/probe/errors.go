package probe

import (
	"errors"
	"net"
	"os"
	"syscall"
)

// Kind is the classification of a socket-level error. Raw platform errors
// are translated here, at the lowest layer, so that upper layers never
// inspect error text.
type Kind int

const (
	// KindOther covers faults with no more specific classification
	KindOther Kind = iota
	// KindPermissionDenied means the OS refused the operation for lack of privilege
	KindPermissionDenied
	// KindTimeout means a deadline elapsed before the operation completed
	KindTimeout
	// KindUnreachable means the network or host cannot be reached at all
	KindUnreachable
)

// String returns the name of the error kind.
func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission-denied"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// Classify maps a socket error onto its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES) {
		return KindPermissionDenied
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return KindUnreachable
	}

	return KindOther
}

// IsPermission returns true if the error classifies as a privilege failure.
func IsPermission(err error) bool {
	return Classify(err) == KindPermissionDenied
}

// IsTimeout returns true if the error classifies as a deadline expiry.
func IsTimeout(err error) bool {
	return Classify(err) == KindTimeout
}
