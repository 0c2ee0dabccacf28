package http

import (
	"net/http"
	"testing"

	"ledger/internal/core"
)

func TestHealthEndpoints(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Errorf("Content-Security-Policy missing")
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	rec := doJSON(t, s, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	rec := doJSON(t, s, http.MethodPut, "/api/transactions", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
