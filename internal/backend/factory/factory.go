// Package factory builds a concrete gateway from configuration. It lives
// below the port package so the implementations can depend on the ports
// without a cycle.
package factory

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/backend"
	"ledger/internal/backend/memory"
	"ledger/internal/backend/sqlite"
	"ledger/internal/core"
)

type Factory struct {
	logger *slog.Logger
}

// New creates a gateway factory.
func New(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateGateway builds the gateway selected by cfg.Type and applies the
// dev session seed if configured.
func (f *Factory) CreateGateway(ctx context.Context, cfg backend.Config) (*backend.Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case backend.SQLiteBackend:
		return f.createSQLiteGateway(ctx, cfg)
	default:
		return f.createMemoryGateway(cfg)
	}
}

func (f *Factory) createSQLiteGateway(ctx context.Context, cfg backend.Config) (*backend.Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite gateway: %w", err)
	}

	if cfg.SeedUserID != "" {
		if cfg.SeedRole != "" {
			p := core.Profile{
				ID:    cfg.SeedUserID,
				Email: cfg.SeedEmail,
				Role:  core.NormalizeRole(cfg.SeedRole),
			}
			if err := repo.SeedProfile(ctx, p); err != nil {
				repo.Close()
				return nil, fmt.Errorf("seed profile: %w", err)
			}
		}
		repo.SignIn(core.Session{UserID: cfg.SeedUserID, Email: cfg.SeedEmail})
		f.logger.Info("Seeded dev session",
			"user_id", cfg.SeedUserID,
			"verified", cfg.SeedRole != "")
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &backend.Result{Gateway: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) createMemoryGateway(cfg backend.Config) (*backend.Result, error) {
	store := memory.New()

	if cfg.SeedUserID != "" {
		if cfg.SeedRole != "" {
			store.SeedProfile(core.Profile{
				ID:    cfg.SeedUserID,
				Email: cfg.SeedEmail,
				Role:  core.NormalizeRole(cfg.SeedRole),
			})
		}
		store.SignIn(core.Session{UserID: cfg.SeedUserID, Email: cfg.SeedEmail})
		f.logger.Info("Seeded dev session",
			"user_id", cfg.SeedUserID,
			"verified", cfg.SeedRole != "")
	}

	f.logger.Info("Initialized memory backend")
	return &backend.Result{Gateway: store, Cleanup: nil}, nil
}
