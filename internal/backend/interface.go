// Package backend defines the gateway ports this application consumes.
// The real authentication/database service is an external collaborator;
// everything here mirrors its contract so the rest of the code never
// talks to a concrete store directly.
package backend

import (
	"context"

	"ledger/internal/core"
)

// Scope is the row-visibility rule applied to a transaction operation:
// either every row, or only rows owned by a specific user.
type Scope struct {
	all     bool
	ownerID string
}

// ScopeAll grants visibility over every owner's rows.
func ScopeAll() Scope {
	return Scope{all: true}
}

// ScopeOwnedBy restricts visibility to rows owned by the given user.
func ScopeOwnedBy(ownerID string) Scope {
	return Scope{ownerID: ownerID}
}

// All reports whether the scope covers every row.
func (s Scope) All() bool { return s.all }

// OwnerID returns the owning user for a restricted scope.
func (s Scope) OwnerID() string { return s.ownerID }

func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return "owned_by:" + s.ownerID
}

// Subscription is a handle on a session-change stream. Cancel is idempotent;
// failing to call it leaks a standing listener.
type Subscription interface {
	Cancel()
}

// AuthGateway is the session/profile half of the backend contract.
type AuthGateway interface {
	// GetSession returns the current session, or nil when no principal is
	// signed in.
	GetSession(ctx context.Context) (*core.Session, error)

	// Subscribe registers a listener fired on every sign-in, sign-out and
	// token refresh, in arrival order. The listener receives nil when the
	// session is gone.
	Subscribe(fn func(*core.Session)) Subscription

	// SignOut destroys the current session. Subscribers observe the change.
	SignOut(ctx context.Context) error

	// GetProfile looks up one profile row by id. Returns core.ErrNotFound
	// when no row exists (which the classifier reads as "not verified").
	GetProfile(ctx context.Context, userID string) (core.Profile, error)

	// ListProfiles returns all registered profiles; the admin insert form
	// needs them to pick a target user.
	ListProfiles(ctx context.Context) ([]core.Profile, error)
}

// TransactionGateway is the row-CRUD half of the backend contract. The
// backend enforces row-level policies server-side; callers still pass the
// scope so the client-side gating mirrors those policies.
type TransactionGateway interface {
	// ListTransactions returns the rows visible under scope, descending by
	// transaction date, with owner email joined in.
	ListTransactions(ctx context.Context, scope Scope) ([]core.Transaction, error)

	// GetTransaction fetches a single row by id regardless of scope; the
	// export worker uses it to mirror mutations.
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)

	// InsertTransaction persists a new row and returns it with its id set.
	InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)

	// DeleteTransaction removes a row within scope and returns the number
	// of rows affected. Deleting a row outside the scope affects zero rows
	// and is not an error.
	DeleteTransaction(ctx context.Context, id string, scope Scope) (int64, error)
}

// Gateway is the full backend contract.
type Gateway interface {
	AuthGateway
	TransactionGateway
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error
