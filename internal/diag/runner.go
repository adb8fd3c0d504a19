// Package diag sequences one network diagnostic run: address discovery
// followed by reachability probes over an ordered target list.
package diag

import (
	"context"
	"time"

	"github.com/KilimcininKorOglu/sonda/internal/discover"
	"github.com/KilimcininKorOglu/sonda/internal/probe"
	"github.com/KilimcininKorOglu/sonda/internal/resolve"
)

// targetResolver turns a raw target into a probe address.
type targetResolver interface {
	Resolve(ctx context.Context, raw string) (name, address string)
}

// snapshotter captures the host's network identity.
type snapshotter interface {
	Snapshot(ctx context.Context) *discover.Snapshot
}

// Runner performs diagnostic runs. Probing is strictly sequential; each
// target blocks up to its timeout before the next begins, and the result
// order is the target order.
type Runner struct {
	config     *Config
	prober     probe.Prober
	resolver   targetResolver
	discoverer snapshotter
}

// New creates a Runner with the given configuration.
func New(config *Config) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.PublicResolver == "" {
		config.PublicResolver = DefaultPublicResolver
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Runner{
		config:     config,
		prober:     probe.NewICMPProber(probe.ICMPProberConfig{Timeout: config.Timeout}),
		resolver:   resolve.New(),
		discoverer: discover.New(config.Discovery),
	}, nil
}

// Run executes one diagnostic sequence and assembles the report. The
// only error it can return is the context's own; probe and discovery
// failures end up in the report, never here.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{Timestamp: time.Now()}

	// Discovery always runs: even a quiet run needs the DNS server list
	// to build the probe targets.
	snapshot := r.discoverer.Snapshot(ctx)
	if r.config.InfoOnly || !r.config.Quiet {
		report.Snapshot = snapshot
		if r.config.OnSnapshot != nil {
			r.config.OnSnapshot(snapshot)
		}
	}

	if r.config.InfoOnly {
		return report, nil
	}

	for _, t := range r.buildTargets(snapshot.DNSServers) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := r.check(ctx, t)
		report.Results = append(report.Results, result)

		if r.config.OnResult != nil {
			r.config.OnResult(&result)
		}
	}

	return report, nil
}

type target struct {
	raw  string
	kind TargetKind
}

// buildTargets assembles the probe list: configured resolvers first, then
// the fixed public resolver, then user targets, each group preserving its
// input order.
func (r *Runner) buildTargets(dnsServers []string) []target {
	targets := make([]target, 0, len(dnsServers)+1+len(r.config.Targets))
	for _, s := range dnsServers {
		targets = append(targets, target{raw: s, kind: KindDNSServer})
	}
	targets = append(targets, target{raw: r.config.PublicResolver, kind: KindPublicResolver})
	for _, t := range r.config.Targets {
		targets = append(targets, target{raw: t, kind: KindUser})
	}
	return targets
}

// check produces exactly one result for a target. The capability gate
// comes first so an incapable environment answers uniformly without any
// resolution traffic; a failed resolution is final and never probed; the
// resolved address is reused for both probing and reporting.
func (r *Runner) check(ctx context.Context, t target) Result {
	result := Result{Name: t.raw, Kind: t.kind}

	if !r.prober.Available() {
		result.Status = probe.StatusNoCapability
		return result
	}

	_, address := r.resolver.Resolve(ctx, t.raw)
	if address == "" {
		result.Status = probe.StatusResolveFail
		return result
	}

	result.Address = address
	result.Status = r.prober.Probe(ctx, address)
	return result
}
