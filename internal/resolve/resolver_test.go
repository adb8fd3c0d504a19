package resolve

import (
	"context"
	"errors"
	"net"
	"testing"
)

type fakeLookup struct {
	ips    []net.IP
	err    error
	called bool
}

func (f *fakeLookup) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	f.called = true
	return f.ips, f.err
}

func TestResolve_Literals(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"ipv4", "192.0.2.53"},
		{"ipv4 loopback", "127.0.0.1"},
		{"ipv6", "2001:db8::1"},
		{"ipv6 loopback", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{}
			r := &Resolver{lookup: lookup}

			name, address := r.Resolve(context.Background(), tt.raw)
			if name != tt.raw || address != tt.raw {
				t.Errorf("Resolve(%q) = (%q, %q), want input unchanged", tt.raw, name, address)
			}
			if lookup.called {
				t.Error("literal triggered a hostname lookup")
			}
		})
	}
}

func TestResolve_PrefersIPv4(t *testing.T) {
	lookup := &fakeLookup{ips: []net.IP{
		net.ParseIP("2001:db8::1"),
		net.ParseIP("192.0.2.10"),
	}}
	r := &Resolver{lookup: lookup}

	name, address := r.Resolve(context.Background(), "dual.example.com")
	if name != "dual.example.com" {
		t.Errorf("name = %q, want raw input", name)
	}
	if address != "192.0.2.10" {
		t.Errorf("address = %q, want the IPv4 result", address)
	}
}

func TestResolve_IPv6Only(t *testing.T) {
	lookup := &fakeLookup{ips: []net.IP{net.ParseIP("2001:db8::1")}}
	r := &Resolver{lookup: lookup}

	_, address := r.Resolve(context.Background(), "six.example.com")
	if address != "2001:db8::1" {
		t.Errorf("address = %q, want the IPv6 result", address)
	}
}

func TestResolve_Failure(t *testing.T) {
	tests := []struct {
		name   string
		lookup *fakeLookup
	}{
		{"lookup error", &fakeLookup{err: errors.New("no such host")}},
		{"empty answer", &fakeLookup{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{lookup: tt.lookup}

			name, address := r.Resolve(context.Background(), "example.invalid")
			if name != "example.invalid" {
				t.Errorf("name = %q, want raw input", name)
			}
			if address != "" {
				t.Errorf("address = %q, want empty on failure", address)
			}
		})
	}
}
