package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ledger/internal/authz"
	"ledger/internal/backend/memory"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/session"
)

// testServer wires the full stack against the in-memory backend with an
// already signed-in session.
func testServer(t *testing.T, profile core.Profile, signIn bool) (*Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	if profile.ID != "" {
		store.SeedProfile(profile)
	}

	classifier := authz.New(store)
	resolver := session.New(store, classifier.Classify, nil)
	if err := resolver.Start(context.Background()); err != nil {
		t.Fatalf("start resolver: %v", err)
	}
	t.Cleanup(resolver.Close)

	if signIn {
		store.SignIn(core.Session{UserID: profile.ID, Email: profile.Email})
		waitForSettled(t, resolver)
	}

	svc := services.NewTransactionService(store, nil)
	return NewServer(":0", resolver, store, svc), store
}

func waitForSettled(t *testing.T, resolver *session.Resolver) {
	t.Helper()
	waitFor(t, func() bool { return resolver.State() != core.StateLoading })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func doJSON(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestStateEndpointUnauthenticated(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	rec := doJSON(t, s, http.MethodGet, "/api/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp stateResponse
	decodeInto(t, rec, &resp)
	if resp.State != "unauthenticated" || resp.UserID != "" {
		t.Fatalf("unexpected state: %+v", resp)
	}
}

func TestStateEndpointAdmin(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "boss", Email: "boss@example.com", Role: core.RoleAdmin}, true)

	rec := doJSON(t, s, http.MethodGet, "/api/state", "")
	var resp stateResponse
	decodeInto(t, rec, &resp)
	if resp.State != "admin" || !resp.Verified || resp.Role != "admin" {
		t.Fatalf("unexpected state: %+v", resp)
	}
	if resp.Email != "boss@example.com" {
		t.Fatalf("email missing: %+v", resp)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	s, _ := testServer(t, core.Profile{}, false)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDashboardRejectsUnverified(t *testing.T) {
	// A session exists but no profile row, so classification is unverified.
	s, store := testServer(t, core.Profile{}, false)
	store.SignIn(core.Session{UserID: "ghost", Email: "ghost@example.com"})
	waitForSettled(t, s.resolver)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCreateListAndFilterTransactions(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","recipient":"ACME","amount":"10.50","creditor":"John","bank":"Big Bank","description":"office supplies","project":"alpha"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-02-20","recipient":"Globex","amount":"-3.25","creditor":"John","bank":"Big Bank","description":"refund","project":"beta"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	var dash dashboardResponse
	decodeInto(t, rec, &dash)
	if dash.Count != 2 || dash.TotalCents != 725 {
		t.Fatalf("dashboard = %+v", dash)
	}

	// Substring filter is case-insensitive.
	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?description=SUPPLIES", "")
	decodeInto(t, rec, &dash)
	if dash.Count != 1 || dash.Transactions[0].Recipient != "ACME" {
		t.Fatalf("filtered dashboard = %+v", dash)
	}

	// Inclusive date window.
	rec = doJSON(t, s, http.MethodGet, "/api/dashboard?start_date=2024-02-20&end_date=2024-02-20", "")
	decodeInto(t, rec, &dash)
	if dash.Count != 1 || dash.TotalCents != -325 {
		t.Fatalf("date-filtered dashboard = %+v", dash)
	}
}

func TestDashboardRejectsMalformedDate(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard?start_date=20-01-2024", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCreateTransactionInvalidAmount(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","recipient":"ACME","amount":"ten","creditor":"John","bank":"Big Bank"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminInsertWithoutTarget(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "boss", Email: "boss@example.com", Role: core.RoleAdmin}, true)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","recipient":"ACME","amount":"5","creditor":"John","bank":"Big Bank"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","recipient":"ACME","amount":"5","creditor":"John","bank":"Big Bank"}`)
	var created listResponse
	decodeInto(t, rec, &created)
	if created.Count != 1 {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.Transactions[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var after listResponse
	decodeInto(t, rec, &after)
	if after.Count != 0 {
		t.Fatalf("after delete = %+v", after)
	}
}

func TestDashboardCacheInvalidatedByMutation(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	var before dashboardResponse
	decodeInto(t, rec, &before)
	if before.Count != 0 {
		t.Fatalf("expected empty dashboard, got %+v", before)
	}

	doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","recipient":"ACME","amount":"5","creditor":"John","bank":"Big Bank"}`)

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	var after dashboardResponse
	decodeInto(t, rec, &after)
	if after.Count != 1 {
		t.Fatalf("stale dashboard served: %+v", after)
	}
}

func TestUsersEndpointAdminOnly(t *testing.T) {
	s, store := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)
	store.SeedProfile(core.Profile{ID: "u2", Email: "u2@example.com", Role: core.RoleUser})

	rec := doJSON(t, s, http.MethodGet, "/api/users", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestUsersEndpointListsProfiles(t *testing.T) {
	s, store := testServer(t, core.Profile{ID: "boss", Email: "boss@example.com", Role: core.RoleAdmin}, true)
	store.SeedProfile(core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser})

	rec := doJSON(t, s, http.MethodGet, "/api/users", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp usersResponse
	decodeInto(t, rec, &resp)
	if resp.Count != 2 {
		t.Fatalf("users = %+v", resp)
	}
}

func TestSignOutDropsSession(t *testing.T) {
	s, _ := testServer(t, core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser}, true)

	rec := doJSON(t, s, http.MethodPost, "/api/signout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	waitFor(t, func() bool { return s.resolver.State() == core.StateUnauthenticated })
	rec = doJSON(t, s, http.MethodGet, "/api/state", "")
	var resp stateResponse
	decodeInto(t, rec, &resp)
	if resp.State != "unauthenticated" {
		t.Fatalf("state after signout = %+v", resp)
	}
}
