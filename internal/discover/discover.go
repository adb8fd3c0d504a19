// Package discover gathers the host's network identity: the outbound
// local address, the configured DNS resolvers and the externally visible
// public address. Every lookup degrades to an absent value instead of
// failing the run.
package discover

import (
	"context"
	"net/http"
	"time"
)

// Snapshot is the network identity captured once per invocation. Absent
// fields stay empty; the report renders them as undetermined.
type Snapshot struct {
	LocalAddress  string
	DNSServers    []string
	PublicAddress string
}

// Config holds configuration for a Discoverer.
type Config struct {
	// ReferenceAddr is the well-known destination used to read back the
	// routed local address. No packet is sent to it.
	ReferenceAddr string

	// ResolvConf is the resolver configuration file to enumerate.
	ResolvConf string

	// Endpoints is the ordered public-address lookup chain.
	Endpoints []Endpoint

	// Timeout bounds each public-address endpoint request.
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Discoverer performs the three discovery operations.
type Discoverer struct {
	refAddr    string
	resolvConf string
	endpoints  []Endpoint
	timeout    time.Duration
	client     *http.Client
}

// New creates a Discoverer, filling in defaults for unset fields.
func New(config Config) *Discoverer {
	if config.ReferenceAddr == "" {
		config.ReferenceAddr = "8.8.8.8:80"
	}
	if config.ResolvConf == "" {
		config.ResolvConf = "/etc/resolv.conf"
	}
	if len(config.Endpoints) == 0 {
		config.Endpoints = DefaultEndpoints()
	}
	if config.Timeout == 0 {
		config.Timeout = 3 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Discoverer{
		refAddr:    config.ReferenceAddr,
		resolvConf: config.ResolvConf,
		endpoints:  config.Endpoints,
		timeout:    config.Timeout,
		client:     config.HTTPClient,
	}
}

// Snapshot runs all three discovery operations and never fails; fields
// the environment cannot answer stay empty.
func (d *Discoverer) Snapshot(ctx context.Context) *Snapshot {
	return &Snapshot{
		LocalAddress:  d.LocalAddress(),
		DNSServers:    d.DNSServers(),
		PublicAddress: d.PublicAddress(ctx),
	}
}
