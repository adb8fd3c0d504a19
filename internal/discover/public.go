package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// BodyKind says how an endpoint encodes the address it returns.
type BodyKind string

const (
	// BodyJSON endpoints return a JSON object with an "ip" field
	BodyJSON BodyKind = "json"
	// BodyText endpoints return the bare address as the response body
	BodyText BodyKind = "text"
)

// Endpoint is one external public-address lookup service.
type Endpoint struct {
	URL  string
	Kind BodyKind
}

// DefaultEndpoints returns the built-in lookup chain, tried in order.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{URL: "https://api.ipify.org?format=json", Kind: BodyJSON},
		{URL: "https://api64.ipify.org?format=json", Kind: BodyJSON},
		{URL: "https://ifconfig.me/ip", Kind: BodyText},
	}
}

// PublicAddress asks the endpoint chain for the externally visible
// address. Endpoints are tried strictly in order; the first usable answer
// wins and the remaining endpoints are never queried. Every per-endpoint
// failure moves on to the next; if the whole chain fails the address is
// simply absent.
func (d *Discoverer) PublicAddress(ctx context.Context) string {
	for _, ep := range d.endpoints {
		addr, err := d.fetchAddress(ctx, ep)
		if err != nil {
			continue
		}
		return addr
	}
	return ""
}

type addressBody struct {
	IP string `json:"ip"`
}

// fetchAddress queries one endpoint, bounded by the discoverer's timeout.
// The services are untrusted: status, body shape and the address itself
// are all validated before the answer is accepted.
func (d *Discoverer) fetchAddress(ctx context.Context, ep Endpoint) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	var addr string
	switch ep.Kind {
	case BodyJSON:
		var parsed addressBody
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", err
		}
		addr = strings.TrimSpace(parsed.IP)
	default:
		addr = strings.TrimSpace(string(body))
	}

	if addr == "" {
		return "", errors.New("empty address")
	}
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("malformed address %q", addr)
	}
	return addr, nil
}
