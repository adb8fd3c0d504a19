package diag

import (
	"time"

	"github.com/KilimcininKorOglu/sonda/internal/discover"
	"github.com/KilimcininKorOglu/sonda/internal/probe"
)

// TargetKind says where a probe target came from; the report labels
// entries per kind.
type TargetKind int

const (
	// KindDNSServer is a resolver discovered from the system configuration
	KindDNSServer TargetKind = iota
	// KindPublicResolver is the fixed well-known resolver
	KindPublicResolver
	// KindUser is a user-supplied target
	KindUser
)

// String returns the kind name used in structured output.
func (k TargetKind) String() string {
	switch k {
	case KindDNSServer:
		return "dns-server"
	case KindPublicResolver:
		return "public-resolver"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Result is the outcome for one probe target. It is created once per
// target and never mutated afterwards.
type Result struct {
	// Name is the raw target as supplied or discovered
	Name string

	// Address is the resolved address the probe used; empty when
	// resolution failed
	Address string

	// Kind labels the target's origin
	Kind TargetKind

	// Status classifies the probe outcome
	Status probe.Status
}

// Renamed reports whether resolution changed the literal, in which case
// the report shows both the name and the address.
func (r *Result) Renamed() bool {
	return r.Address != "" && r.Address != r.Name
}

// Report is the assembled outcome of one diagnostic run. Results appear
// in strict probe order: discovered DNS servers, the public resolver,
// then user targets.
type Report struct {
	// Timestamp is when the run started
	Timestamp time.Time

	// Snapshot is the discovered network identity; nil when suppressed
	// by quiet mode
	Snapshot *discover.Snapshot

	// Results holds one entry per probe target, in input order
	Results []Result
}

// Reachable counts results with a successful round trip.
func (r *Report) Reachable() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Status.Reachable() {
			n++
		}
	}
	return n
}
