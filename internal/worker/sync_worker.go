// Package worker mirrors ledger mutations into the configured export
// target. It consumes sync and delete messages published by the
// transaction service and keeps the mirror eventually consistent.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/sheets"
)

// SyncWorker handles mirroring of transactions from the backend to the
// export target.
type SyncWorker struct {
	gateway  backend.TransactionGateway
	appender sheets.TransactionAppender
	deleter  sheets.TransactionDeleter
}

func NewSyncWorker(gateway backend.TransactionGateway, appender sheets.TransactionAppender, deleter sheets.TransactionDeleter) *SyncWorker {
	return &SyncWorker{
		gateway:  gateway,
		appender: appender,
		deleter:  deleter,
	}
}

// HandleSyncMessage processes a single transaction sync message. The
// message only carries the id; the row is re-read from the backend so the
// mirror always reflects what was actually stored.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "transaction_id", msg.ID)

	tx, err := w.gateway.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.appender.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"transaction_id", msg.ID,
		"row_ref", ref)
	return nil
}

// HandleDeleteMessage processes a single transaction delete message. The
// source row is already gone, so the message carries the data needed to
// locate the mirrored row.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "transaction_id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No mirror deleter configured, skipping",
			"transaction_id", msg.ID)
		return nil
	}

	if err := w.deleter.DeleteByData(ctx, msg.ID, msg.Date, msg.AmountCents); err != nil {
		return fmt.Errorf("delete from mirror: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored row removed", "transaction_id", msg.ID)
	return nil
}
