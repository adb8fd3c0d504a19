package diag

import "errors"

// Configuration errors.
var (
	// ErrInvalidTimeout indicates the probe timeout is too short
	ErrInvalidTimeout = errors.New("timeout must be at least 100ms")

	// ErrInvalidPublicResolver indicates the public resolver is not an IP literal
	ErrInvalidPublicResolver = errors.New("public resolver must be an IP address literal")
)
