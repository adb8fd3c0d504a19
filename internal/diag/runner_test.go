package diag

import (
	"context"
	"testing"
	"time"

	"github.com/KilimcininKorOglu/sonda/internal/discover"
	"github.com/KilimcininKorOglu/sonda/internal/probe"
)

type fakeProber struct {
	available bool
	statuses  map[string]probe.Status
	probed    []string
}

func (f *fakeProber) Available() bool { return f.available }

func (f *fakeProber) Probe(ctx context.Context, address string) probe.Status {
	f.probed = append(f.probed, address)
	if status, ok := f.statuses[address]; ok {
		return status
	}
	return probe.StatusOK
}

type fakeResolver struct {
	addresses map[string]string // raw -> resolved; missing key resolves to itself
	failing   map[string]bool
	calls     map[string]int
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (string, string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[raw]++

	if f.failing[raw] {
		return raw, ""
	}
	if addr, ok := f.addresses[raw]; ok {
		return raw, addr
	}
	return raw, raw
}

type fakeDiscoverer struct {
	snapshot *discover.Snapshot
	calls    int
}

func (f *fakeDiscoverer) Snapshot(ctx context.Context) *discover.Snapshot {
	f.calls++
	return f.snapshot
}

func newTestRunner(config *Config, prober *fakeProber, resolver *fakeResolver, disc *fakeDiscoverer) *Runner {
	if config.Timeout == 0 {
		config.Timeout = time.Second
	}
	if config.PublicResolver == "" {
		config.PublicResolver = DefaultPublicResolver
	}
	return &Runner{
		config:     config,
		prober:     prober,
		resolver:   resolver,
		discoverer: disc,
	}
}

func TestRun_ReportOrder(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{failing: map[string]bool{"example.invalid": true}}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{DNSServers: []string{"192.0.2.53"}}}

	r := newTestRunner(&Config{Targets: []string{"example.invalid"}}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []struct {
		name   string
		kind   TargetKind
		status probe.Status
	}{
		{"192.0.2.53", KindDNSServer, probe.StatusOK},
		{"8.8.8.8", KindPublicResolver, probe.StatusOK},
		{"example.invalid", KindUser, probe.StatusResolveFail},
	}

	if len(report.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(want))
	}
	for i, w := range want {
		got := report.Results[i]
		if got.Name != w.name || got.Kind != w.kind || got.Status != w.status {
			t.Errorf("result[%d] = {%s %v %v}, want {%s %v %v}",
				i, got.Name, got.Kind, got.Status, w.name, w.kind, w.status)
		}
	}

	// The failed resolution must never reach the prober.
	if len(prober.probed) != 2 {
		t.Errorf("probed %v, want exactly the two resolver addresses", prober.probed)
	}
}

func TestRun_InfoOnlySkipsProbing(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{
		LocalAddress: "192.168.0.10",
		DNSServers:   []string{"192.0.2.53"},
	}}

	// Info-only wins even when quiet is also set.
	r := newTestRunner(&Config{InfoOnly: true, Quiet: true, Targets: []string{"example.com"}}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Snapshot == nil {
		t.Error("info-only report is missing the snapshot")
	}
	if len(report.Results) != 0 {
		t.Errorf("got %d results, want none in info-only mode", len(report.Results))
	}
	if len(prober.probed) != 0 {
		t.Errorf("prober invoked %d times, want 0", len(prober.probed))
	}
}

func TestRun_QuietStillDiscovers(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{DNSServers: []string{"192.0.2.53", "198.51.100.53"}}}

	r := newTestRunner(&Config{Quiet: true}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if disc.calls != 1 {
		t.Errorf("discovery ran %d times, want 1", disc.calls)
	}
	if report.Snapshot != nil {
		t.Error("quiet report should not carry the snapshot")
	}

	// The discovered servers still feed the probe list, same order as a
	// non-quiet run.
	wantNames := []string{"192.0.2.53", "198.51.100.53", "8.8.8.8"}
	if len(report.Results) != len(wantNames) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(wantNames))
	}
	for i, name := range wantNames {
		if report.Results[i].Name != name {
			t.Errorf("result[%d].Name = %q, want %q", i, report.Results[i].Name, name)
		}
	}
}

func TestRun_NoCapability(t *testing.T) {
	prober := &fakeProber{available: false}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{DNSServers: []string{"192.0.2.53"}}}

	r := newTestRunner(&Config{Targets: []string{"example.com", "not-even-valid"}}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, result := range report.Results {
		if result.Status != probe.StatusNoCapability {
			t.Errorf("result[%d].Status = %v, want NO_CAPABILITY", i, result.Status)
		}
	}
	if len(resolver.calls) != 0 {
		t.Error("resolver consulted despite missing capability")
	}
	if len(prober.probed) != 0 {
		t.Error("prober invoked despite missing capability")
	}
}

func TestRun_ResolveOnceAndReuse(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{addresses: map[string]string{"example.com": "93.184.216.34"}}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{}}

	r := newTestRunner(&Config{Targets: []string{"example.com"}}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if resolver.calls["example.com"] != 1 {
		t.Errorf("example.com resolved %d times, want exactly once", resolver.calls["example.com"])
	}

	last := report.Results[len(report.Results)-1]
	if last.Address != "93.184.216.34" {
		t.Errorf("Address = %q, want the resolved address", last.Address)
	}
	if !last.Renamed() {
		t.Error("Renamed() = false for a hostname that resolved elsewhere")
	}

	// The probe must have used the very address the report shows.
	if probed := prober.probed[len(prober.probed)-1]; probed != last.Address {
		t.Errorf("probed %q, reported %q; must be the same address", probed, last.Address)
	}
}

func TestRun_FailureDoesNotAbortRemaining(t *testing.T) {
	prober := &fakeProber{
		available: true,
		statuses:  map[string]probe.Status{"192.0.2.53": probe.StatusError},
	}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{DNSServers: []string{"192.0.2.53"}}}

	r := newTestRunner(&Config{Targets: []string{"192.0.2.99"}}, prober, resolver, disc)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want all 3 despite the ERROR", len(report.Results))
	}
	if report.Results[0].Status != probe.StatusError {
		t.Errorf("result[0].Status = %v, want ERROR", report.Results[0].Status)
	}
	if report.Results[1].Status != probe.StatusOK || report.Results[2].Status != probe.StatusOK {
		t.Error("later targets were not probed after an earlier failure")
	}
}

func TestRun_StreamingCallbacks(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{DNSServers: []string{"192.0.2.53"}}}

	var snapshots int
	var streamed []string
	config := &Config{
		OnSnapshot: func(s *discover.Snapshot) { snapshots++ },
		OnResult:   func(r *Result) { streamed = append(streamed, r.Name) },
	}

	r := newTestRunner(config, prober, resolver, disc)
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if snapshots != 1 {
		t.Errorf("OnSnapshot called %d times, want 1", snapshots)
	}
	if len(streamed) != len(report.Results) {
		t.Errorf("streamed %d results, report has %d", len(streamed), len(report.Results))
	}
	for i, name := range streamed {
		if report.Results[i].Name != name {
			t.Errorf("streamed[%d] = %q, report order differs", i, name)
		}
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	prober := &fakeProber{available: true}
	resolver := &fakeResolver{}
	disc := &fakeDiscoverer{snapshot: &discover.Snapshot{}}

	r := newTestRunner(&Config{}, prober, resolver, disc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	if err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"timeout too short", func(c *Config) { c.Timeout = 10 * time.Millisecond }, ErrInvalidTimeout},
		{"bad public resolver", func(c *Config) { c.PublicResolver = "dns.example.com" }, ErrInvalidPublicResolver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResultRenamed(t *testing.T) {
	literal := Result{Name: "8.8.8.8", Address: "8.8.8.8"}
	if literal.Renamed() {
		t.Error("Renamed() = true for an IP literal")
	}

	unresolved := Result{Name: "example.invalid"}
	if unresolved.Renamed() {
		t.Error("Renamed() = true for an unresolved target")
	}
}
