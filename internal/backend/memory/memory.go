// Package memory is the in-process gateway implementation. It backs the
// test suite and the default dev backend, mirroring the row-level policies
// the real backend enforces.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ledger/internal/backend"
	"ledger/internal/core"
)

type Store struct {
	*backend.SessionBroker

	mu       sync.Mutex
	profiles map[string]core.Profile
	txs      []core.Transaction
}

func New() *Store {
	return &Store{
		SessionBroker: backend.NewSessionBroker(),
		profiles:      make(map[string]core.Profile),
	}
}

// SeedProfile registers a verified principal. Tests use it to shape the
// profiles table; a principal without a profile row counts as unverified.
func (s *Store) SeedProfile(p core.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) SignOut(_ context.Context) error {
	s.SessionBroker.SignOut()
	return nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return core.Profile{}, core.ErrNotFound
}

func (s *Store) ListProfiles(_ context.Context) ([]core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, scope backend.Scope) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if !scope.All() && tx.OwnerID != scope.OwnerID() {
			continue
		}
		if p, ok := s.profiles[tx.OwnerID]; ok {
			tx.OwnerEmail = p.Email
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			if p, ok := s.profiles[tx.OwnerID]; ok {
				tx.OwnerEmail = p.Email
			}
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string, scope backend.Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID != id {
			continue
		}
		if !scope.All() && tx.OwnerID != scope.OwnerID() {
			// Out-of-scope rows are invisible to the delete: zero rows
			// affected, no error, matching the backend's row policies.
			return 0, nil
		}
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		return 1, nil
	}
	return 0, nil
}

var _ backend.Gateway = (*Store)(nil)
