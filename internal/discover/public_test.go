package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func jsonServer(t *testing.T, body string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func textServer(t *testing.T, body string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T, status int, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPublicAddress_FirstSuccessShortCircuits(t *testing.T) {
	var hits1, hits2, hits3 int
	first := failingServer(t, http.StatusInternalServerError, &hits1)
	second := jsonServer(t, `{"ip":"203.0.113.7"}`, &hits2)
	third := textServer(t, "198.51.100.1", &hits3)

	d := New(Config{Endpoints: []Endpoint{
		{URL: first.URL, Kind: BodyJSON},
		{URL: second.URL, Kind: BodyJSON},
		{URL: third.URL, Kind: BodyText},
	}})

	if got := d.PublicAddress(context.Background()); got != "203.0.113.7" {
		t.Errorf("PublicAddress() = %q, want 203.0.113.7", got)
	}
	if hits1 != 1 || hits2 != 1 {
		t.Errorf("endpoint hits = %d/%d, want 1/1", hits1, hits2)
	}
	if hits3 != 0 {
		t.Error("endpoint after the first success was queried")
	}
}

func TestPublicAddress_TextBody(t *testing.T) {
	var hits int
	srv := textServer(t, "  203.0.113.99\n", &hits)

	d := New(Config{Endpoints: []Endpoint{{URL: srv.URL, Kind: BodyText}}})

	if got := d.PublicAddress(context.Background()); got != "203.0.113.99" {
		t.Errorf("PublicAddress() = %q, want trimmed text body", got)
	}
}

func TestPublicAddress_SkipsBadBodies(t *testing.T) {
	var hits int
	tests := []struct {
		name string
		srv  *httptest.Server
		kind BodyKind
	}{
		{"malformed json", jsonServer(t, `{"ip": `, &hits), BodyJSON},
		{"empty ip field", jsonServer(t, `{"ip":""}`, &hits), BodyJSON},
		{"not an address", textServer(t, "<html>guru meditation</html>", &hits), BodyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits2 int
			fallback := textServer(t, "192.0.2.77", &hits2)

			d := New(Config{Endpoints: []Endpoint{
				{URL: tt.srv.URL, Kind: tt.kind},
				{URL: fallback.URL, Kind: BodyText},
			}})

			if got := d.PublicAddress(context.Background()); got != "192.0.2.77" {
				t.Errorf("PublicAddress() = %q, want the fallback answer", got)
			}
			if hits2 != 1 {
				t.Error("fallback endpoint was not queried")
			}
		})
	}
}

func TestPublicAddress_AllFail(t *testing.T) {
	var hits int
	srv := failingServer(t, http.StatusServiceUnavailable, &hits)

	d := New(Config{Endpoints: []Endpoint{
		{URL: srv.URL, Kind: BodyJSON},
		{URL: "http://127.0.0.1:0/", Kind: BodyText}, // unconnectable
	}})

	if got := d.PublicAddress(context.Background()); got != "" {
		t.Errorf("PublicAddress() = %q, want empty when all endpoints fail", got)
	}
}

func TestDefaultEndpoints_Order(t *testing.T) {
	eps := DefaultEndpoints()
	if len(eps) != 3 {
		t.Fatalf("len = %d, want 3", len(eps))
	}
	if eps[0].Kind != BodyJSON || eps[2].Kind != BodyText {
		t.Errorf("unexpected endpoint kinds: %+v", eps)
	}
}
