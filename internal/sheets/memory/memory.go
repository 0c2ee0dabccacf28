package memory

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/core"
	ports "ledger/internal/sheets"
)

// Mirror is an in-memory export target, used in tests and when no
// spreadsheet is configured.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var (
	_ ports.TransactionAppender = (*Mirror)(nil)
	_ ports.TransactionDeleter  = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{}
}

// Append stores the transaction and returns a synthetic row reference.
func (m *Mirror) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, tx)
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// DeleteByData removes the first row matching id. A miss is not an error;
// the mirror may simply never have seen the row.
func (m *Mirror) DeleteByData(_ context.Context, id string, _ string, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the mirrored rows.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
