package memory

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/backend"
	"ledger/internal/core"
)

func newTx(date core.Date, owner string, cents int64) core.Transaction {
	return core.Transaction{
		Date:      date,
		Recipient: "ACME",
		Amount:    core.Money{Cents: cents},
		Creditor:  "John",
		Bank:      "Big Bank",
		OwnerID:   owner,
	}
}

func TestGetProfile(t *testing.T) {
	store := New()
	store.SeedProfile(core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser})

	p, err := store.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Email != "u1@example.com" || p.Role != core.RoleUser {
		t.Fatalf("profile = %+v", p)
	}

	if _, err := store.GetProfile(context.Background(), "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListProfilesSortedByEmail(t *testing.T) {
	store := New()
	store.SeedProfile(core.Profile{ID: "u2", Email: "zed@example.com", Role: core.RoleUser})
	store.SeedProfile(core.Profile{ID: "u1", Email: "abel@example.com", Role: core.RoleAdmin})

	profiles, err := store.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Email != "abel@example.com" {
		t.Fatalf("profiles = %+v", profiles)
	}
}

func TestInsertAssignsIDAndValidates(t *testing.T) {
	store := New()
	ctx := context.Background()

	saved, err := store.InsertTransaction(ctx, newTx(core.NewDate(2024, 1, 1), "u1", 100))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("id not assigned: %+v", saved)
	}

	bad := newTx(core.NewDate(2024, 1, 1), "u1", 100)
	bad.Recipient = ""
	if _, err := store.InsertTransaction(ctx, bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestListScopingAndOwnerEmailJoin(t *testing.T) {
	store := New()
	store.SeedProfile(core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser})
	store.SeedProfile(core.Profile{ID: "u2", Email: "u2@example.com", Role: core.RoleUser})
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		newTx(core.NewDate(2024, 1, 1), "u1", 100),
		newTx(core.NewDate(2024, 3, 1), "u1", 200),
		newTx(core.NewDate(2024, 2, 1), "u2", 300),
	} {
		if _, err := store.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	mine, err := store.ListTransactions(ctx, backend.ScopeOwnedBy("u1"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d rows, want 2", len(mine))
	}
	// Newest first, owner email joined from the profiles table.
	if mine[0].Date.String() != "2024-03-01" || mine[0].OwnerEmail != "u1@example.com" {
		t.Fatalf("rows = %+v", mine)
	}

	all, err := store.ListTransactions(ctx, backend.ScopeAll())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d rows, want 3", len(all))
	}
}

func TestDeleteScopePolicy(t *testing.T) {
	store := New()
	ctx := context.Background()

	saved, err := store.InsertTransaction(ctx, newTx(core.NewDate(2024, 1, 1), "u2", 100))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Foreign scope: row invisible, zero affected, no error.
	affected, err := store.DeleteTransaction(ctx, saved.ID, backend.ScopeOwnedBy("u1"))
	if err != nil || affected != 0 {
		t.Fatalf("foreign delete = %d, %v", affected, err)
	}

	// Admin scope removes it.
	affected, err = store.DeleteTransaction(ctx, saved.ID, backend.ScopeAll())
	if err != nil || affected != 1 {
		t.Fatalf("admin delete = %d, %v", affected, err)
	}

	// Unknown id: zero affected, no error.
	affected, err = store.DeleteTransaction(ctx, "nope", backend.ScopeAll())
	if err != nil || affected != 0 {
		t.Fatalf("missing delete = %d, %v", affected, err)
	}
}
