// Package authz turns a resolved session into an authorization verdict.
package authz

import (
	"context"
	"log/slog"

	"ledger/internal/core"
)

// ProfileReader is the slice of the auth gateway the classifier needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (core.Profile, error)
}

// Classifier looks up the principal's profile to decide verification
// status and role. A profile row exists only once email verification
// completes, so a missing row reads as "not yet verified"; there is no
// separate verified flag.
type Classifier struct {
	profiles ProfileReader
}

func New(profiles ProfileReader) *Classifier {
	return &Classifier{profiles: profiles}
}

// Classify never fails: a lookup error degrades to the same
// unverified/user verdict as a missing row, and is only logged. The state
// machine must keep running no matter what the backend does.
func (c *Classifier) Classify(ctx context.Context, userID string) core.Classification {
	p, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		if err != core.ErrNotFound {
			slog.ErrorContext(ctx, "Profile lookup failed, treating as unverified",
				"user_id", userID,
				"error", err)
		}
		return core.Classification{Verified: false, Role: core.RoleUser}
	}
	return core.Classification{Verified: true, Role: core.NormalizeRole(string(p.Role))}
}
