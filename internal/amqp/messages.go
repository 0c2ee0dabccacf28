package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

const (
	KindSync   = "transaction.sync"
	KindDelete = "transaction.delete"
)

// Envelope wraps every message on the wire so the consumer can route by
// kind without guessing at payload shape.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TransactionSyncMessage asks the worker to mirror one row into the export
// target. It carries only the id; the worker fetches the full row from the
// gateway so the export always reflects backend truth.
type TransactionSyncMessage struct {
	ID string `json:"id"`
}

// TransactionDeleteMessage carries enough of the deleted row for the
// worker to locate and remove the mirrored entry; the source row is
// already gone by the time the worker runs.
type TransactionDeleteMessage struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Recipient   string `json:"recipient"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Project     string `json:"project"`
	OwnerID     string `json:"owner_id"`
}

// DeleteMessageFor captures the row fields the worker needs.
func DeleteMessageFor(tx core.Transaction) TransactionDeleteMessage {
	return TransactionDeleteMessage{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Recipient:   tx.Recipient,
		AmountCents: tx.Amount.Cents,
		Description: tx.Description,
		Project:     tx.Project,
		OwnerID:     tx.OwnerID,
	}
}

func newEnvelope(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   raw,
	})
}
