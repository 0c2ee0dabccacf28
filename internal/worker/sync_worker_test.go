package worker

import (
	"context"
	"testing"

	"ledger/internal/amqp"
	backendmemory "ledger/internal/backend/memory"
	"ledger/internal/core"
	sheetsmemory "ledger/internal/sheets/memory"
)

func seededBackend(t *testing.T) (*backendmemory.Store, core.Transaction) {
	t.Helper()
	store := backendmemory.New()
	store.SeedProfile(core.Profile{ID: "u1", Email: "u1@example.com", Role: core.RoleUser})
	tx, err := store.InsertTransaction(context.Background(), core.Transaction{
		Date:      core.NewDate(2024, 2, 10),
		Recipient: "ACME",
		Amount:    core.Money{Cents: 2500},
		Creditor:  "John",
		Bank:      "Big Bank",
		OwnerID:   "u1",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return store, tx
}

func TestHandleSyncMessageMirrorsRow(t *testing.T) {
	store, tx := seededBackend(t)
	mirror := sheetsmemory.New()
	w := NewSyncWorker(store, mirror, mirror)

	err := w.HandleSyncMessage(context.Background(), &amqp.TransactionSyncMessage{ID: tx.ID})
	if err != nil {
		t.Fatalf("handle sync: %v", err)
	}

	rows := mirror.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d mirrored rows, want 1", len(rows))
	}
	if rows[0].ID != tx.ID || rows[0].Amount.Cents != 2500 {
		t.Fatalf("mirrored row mismatch: %+v", rows[0])
	}
}

func TestHandleSyncMessageUnknownID(t *testing.T) {
	store, _ := seededBackend(t)
	mirror := sheetsmemory.New()
	w := NewSyncWorker(store, mirror, mirror)

	err := w.HandleSyncMessage(context.Background(), &amqp.TransactionSyncMessage{ID: "nope"})
	if err == nil {
		t.Fatalf("expected error for unknown transaction")
	}
	if len(mirror.Rows()) != 0 {
		t.Fatalf("mirror should be empty")
	}
}

func TestHandleDeleteMessageRemovesRow(t *testing.T) {
	store, tx := seededBackend(t)
	mirror := sheetsmemory.New()
	w := NewSyncWorker(store, mirror, mirror)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, &amqp.TransactionSyncMessage{ID: tx.ID}); err != nil {
		t.Fatalf("handle sync: %v", err)
	}

	msg := amqp.DeleteMessageFor(tx)
	if err := w.HandleDeleteMessage(ctx, &msg); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(mirror.Rows()) != 0 {
		t.Fatalf("mirrored row not removed: %+v", mirror.Rows())
	}
}

func TestHandleDeleteMessageNoDeleterConfigured(t *testing.T) {
	store, tx := seededBackend(t)
	w := NewSyncWorker(store, sheetsmemory.New(), nil)

	msg := amqp.DeleteMessageFor(tx)
	if err := w.HandleDeleteMessage(context.Background(), &msg); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
}
