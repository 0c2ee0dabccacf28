package sheets

import (
	"context"

	"ledger/internal/core"
)

// Ports for outbound export adapters. The worker mirrors ledger mutations
// into an external sheet; the mirror is best-effort and eventually
// consistent with the backend.
type (
	TransactionAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes a mirrored row. The source row is gone by
	// the time this runs, so the adapter matches on the row data itself.
	TransactionDeleter interface {
		DeleteByData(ctx context.Context, id string, date string, amountCents int64) error
	}
)
