// Package services orchestrates access-scoped transaction operations
// against the backend gateway and publishes mutation events for the
// export worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/core"
)

// Principal is the acting caller as the session resolver sees it. The
// state encodes both verification and role, so the service never has to
// re-classify.
type Principal struct {
	UserID string
	State  core.ApplicationState
}

func (p Principal) scope() backend.Scope {
	if p.State.Admin() {
		return backend.ScopeAll()
	}
	return backend.ScopeOwnedBy(p.UserID)
}

// Publisher is the slice of the AMQP client the service needs. Nil-able:
// export is best-effort and never fails a user-facing operation.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, msg amqp.TransactionDeleteMessage) error
}

// TransactionService performs scoped reads/writes/deletes. Every
// successful mutation re-fetches the full list, so the in-memory view can
// never diverge from backend truth.
type TransactionService struct {
	gateway   backend.TransactionGateway
	publisher Publisher
}

func NewTransactionService(gateway backend.TransactionGateway, publisher Publisher) *TransactionService {
	return &TransactionService{
		gateway:   gateway,
		publisher: publisher,
	}
}

// List returns the rows visible to the principal, newest first. Admins see
// every owner's rows; everyone else only their own.
func (s *TransactionService) List(ctx context.Context, p Principal) ([]core.Transaction, error) {
	txs, err := s.gateway.ListTransactions(ctx, p.scope())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Insert validates and persists a new transaction, then returns the
// re-fetched list. The authorization gate runs before any backend call:
// unverified principals are rejected outright, and an admin must name a
// target user. A non-admin's ownerId is forced to their own id no matter
// what arrived with the form.
func (s *TransactionService) Insert(ctx context.Context, p Principal, input core.TransactionInput, targetUserID string) ([]core.Transaction, error) {
	if !p.State.Verified() {
		return nil, fmt.Errorf("%w: %w", core.ErrAuthorization, core.ErrUnverifiedEmail)
	}

	ownerID := p.UserID
	if p.State.Admin() {
		if targetUserID == "" {
			return nil, fmt.Errorf("%w: %w", core.ErrValidation, core.ErrMissingTarget)
		}
		ownerID = targetUserID
	}

	cents, err := core.ParseAmountToCents(input.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	tx := core.Transaction{
		Date:        input.Date,
		Recipient:   input.Recipient,
		Amount:      core.Money{Cents: cents},
		Creditor:    input.Creditor,
		Bank:        input.Bank,
		Description: input.Description,
		Project:     input.Project,
		OwnerID:     ownerID,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	saved, err := s.gateway.InsertTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.publishSync(ctx, saved.ID)

	return s.List(ctx, p)
}

// Delete removes a row within the principal's scope and returns the
// re-fetched list. A non-admin deleting someone else's row affects zero
// rows; the backend treats that as success and so do we. The zero-row
// case is logged, not surfaced.
func (s *TransactionService) Delete(ctx context.Context, p Principal, transactionID string) ([]core.Transaction, error) {
	// Capture the row first so the delete event can describe it; best
	// effort, the delete proceeds regardless.
	var deleted *core.Transaction
	if row, err := s.gateway.GetTransaction(ctx, transactionID); err == nil {
		deleted = &row
	}

	affected, err := s.gateway.DeleteTransaction(ctx, transactionID, p.scope())
	if err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		slog.InfoContext(ctx, "Delete affected no rows",
			"transaction_id", transactionID,
			"user_id", p.UserID,
			"scope", p.scope().String())
	} else if deleted != nil {
		s.publishDelete(ctx, *deleted)
	}

	return s.List(ctx, p)
}

func (s *TransactionService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id); err != nil {
		// The row is saved; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", id,
			"error", err)
	}
}

func (s *TransactionService) publishDelete(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionDelete(ctx, amqp.DeleteMessageFor(tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"transaction_id", tx.ID,
			"error", err)
	}
}
