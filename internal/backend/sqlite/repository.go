// Package sqlite implements the backend gateway over a local SQLite
// database. The owner-scoped SQL mirrors the row-level policies the remote
// backend applies, so the client-side gating and the store agree.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ledger/internal/backend"
	"ledger/internal/core"
)

type Repository struct {
	*backend.SessionBroker

	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		SessionBroker: backend.NewSessionBroker(),
		db:            db,
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) SignOut(_ context.Context) error {
	r.SessionBroker.SignOut()
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, role FROM profiles WHERE id = ?`, userID)

	var p core.Profile
	var role string
	if err := row.Scan(&p.ID, &p.Email, &role); err != nil {
		if err == sql.ErrNoRows {
			return core.Profile{}, core.ErrNotFound
		}
		return core.Profile{}, fmt.Errorf("%w: get profile: %v", core.ErrBackend, err)
	}
	p.Role = core.NormalizeRole(role)
	return p, nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, role FROM profiles ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("%w: list profiles: %v", core.ErrBackend, err)
	}
	defer rows.Close()

	var out []core.Profile
	for rows.Next() {
		var p core.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Email, &role); err != nil {
			return nil, fmt.Errorf("%w: scan profile: %v", core.ErrBackend, err)
		}
		p.Role = core.NormalizeRole(role)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SeedProfile upserts a profile row. The real backend creates these on
// signup verification; locally the seeder stands in for that flow.
func (r *Repository) SeedProfile(ctx context.Context, p core.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, role) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, role = excluded.role`,
		p.ID, p.Email, string(p.Role))
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	return nil
}

const txColumns = `t.id, t.transaction_date, t.recipient, t.amount_cents,
	t.creditor, t.bank, t.description, t.project, t.user_id,
	COALESCE(p.email, '')`

func (r *Repository) ListTransactions(ctx context.Context, scope backend.Scope) ([]core.Transaction, error) {
	query := `SELECT ` + txColumns + `
		FROM transactions t
		LEFT JOIN profiles p ON p.id = t.user_id`
	args := []any{}
	if !scope.All() {
		query += ` WHERE t.user_id = ?`
		args = append(args, scope.OwnerID())
	}
	query += ` ORDER BY t.transaction_date DESC, t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", core.ErrBackend, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			// A malformed row must not leak undefined values into the
			// aggregation stage; log and skip it.
			slog.WarnContext(ctx, "Skipping malformed transaction row", "error", err)
			continue
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txColumns+`
		FROM transactions t
		LEFT JOIN profiles p ON p.id = t.user_id
		WHERE t.id = ?`, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("%w: get transaction: %v", core.ErrBackend, err)
	}
	return tx, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, transaction_date, recipient, amount_cents, creditor, bank, description, project, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), tx.Recipient, tx.Amount.Cents,
		tx.Creditor, tx.Bank, tx.Description, tx.Project, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: insert transaction: %v", core.ErrBackend, err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"owner_id", tx.OwnerID,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return tx, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string, scope backend.Scope) (int64, error) {
	query := `DELETE FROM transactions WHERE id = ?`
	args := []any{id}
	if !scope.All() {
		query += ` AND user_id = ?`
		args = append(args, scope.OwnerID())
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: delete transaction: %v", core.ErrBackend, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", core.ErrBackend, err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransaction maps a raw row onto the typed record, rejecting rows
// missing required fields instead of propagating them downstream.
func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date string
	var description, project sql.NullString
	if err := row.Scan(&tx.ID, &date, &tx.Recipient, &tx.Amount.Cents,
		&tx.Creditor, &tx.Bank, &description, &project, &tx.OwnerID, &tx.OwnerEmail); err != nil {
		return core.Transaction{}, err
	}
	tx.Description = description.String
	tx.Project = project.String

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %s: bad transaction_date %q", tx.ID, date)
	}
	tx.Date = parsed

	if tx.ID == "" || tx.OwnerID == "" {
		return core.Transaction{}, fmt.Errorf("row missing id or owner")
	}
	return tx, nil
}

var _ backend.Gateway = (*Repository)(nil)
