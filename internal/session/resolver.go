// Package session owns the authentication lifecycle: it converts the raw
// session events the gateway emits into the discrete application state the
// rest of the system consumes.
package session

import (
	"context"
	"log/slog"
	"sync"

	"ledger/internal/backend"
	"ledger/internal/core"
)

// ClassifyFunc is the authorization classifier's contract.
type ClassifyFunc func(ctx context.Context, userID string) core.Classification

// Snapshot is a consistent read of the resolver's derived state.
type Snapshot struct {
	State          core.ApplicationState
	Session        *core.Session
	Classification core.Classification
}

// Resolver subscribes to the gateway's session-change stream and keeps the
// application state current. Classification runs asynchronously; every
// completion carries the sequence number of the event that triggered it,
// and a completion older than the last applied one is discarded, so a slow
// lookup can never overwrite the verdict for a newer event.
type Resolver struct {
	auth     backend.AuthGateway
	classify ClassifyFunc
	onChange func(Snapshot)

	mu      sync.Mutex
	state   core.ApplicationState
	session *core.Session
	cls     core.Classification
	seq     uint64 // last event sequence handed out
	applied uint64 // sequence of the last applied classification

	sub       backend.Subscription
	closeOnce sync.Once
}

// New creates a resolver. onChange may be nil; when set it fires after
// every state transition with the fresh snapshot.
func New(auth backend.AuthGateway, classify ClassifyFunc, onChange func(Snapshot)) *Resolver {
	return &Resolver{
		auth:     auth,
		classify: classify,
		onChange: onChange,
		state:    core.StateLoading,
	}
}

// Start fetches the current session once, then subscribes to session
// changes. It must be paired with Close, or the gateway keeps a standing
// listener alive.
func (r *Resolver) Start(ctx context.Context) error {
	current, err := r.auth.GetSession(ctx)
	if err != nil {
		// Treat a failed initial fetch like an absent session; the next
		// session-change event re-resolves.
		slog.ErrorContext(ctx, "Initial session fetch failed", "error", err)
		current = nil
	}
	r.handleEvent(ctx, current)

	r.mu.Lock()
	r.sub = r.auth.Subscribe(func(s *core.Session) {
		r.handleEvent(ctx, s)
	})
	r.mu.Unlock()
	return nil
}

// Close releases the session-change subscription. Idempotent.
func (r *Resolver) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		sub := r.sub
		r.mu.Unlock()
		if sub != nil {
			sub.Cancel()
		}
	})
}

// Snapshot returns the current derived state.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// State returns the current application state.
func (r *Resolver) State() core.ApplicationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) snapshotLocked() Snapshot {
	var sess *core.Session
	if r.session != nil {
		dup := *r.session
		sess = &dup
	}
	return Snapshot{State: r.state, Session: sess, Classification: r.cls}
}

// handleEvent processes one session-change notification. Events arrive in
// order; the classification they trigger may not complete in order.
func (r *Resolver) handleEvent(ctx context.Context, s *core.Session) {
	r.mu.Lock()
	r.seq++
	seq := r.seq

	if s == nil {
		// Sign-out or expiry: discard any cached verdict immediately. The
		// sequence bump also invalidates in-flight classifications.
		r.applied = seq
		r.session = nil
		r.cls = core.Classification{}
		r.state = core.StateUnauthenticated
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.notify(snap)
		return
	}

	r.session = s
	r.state = core.StateLoading
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)

	userID := s.UserID
	go func() {
		cls := r.classify(ctx, userID)
		r.applyClassification(seq, cls)
	}()
}

// applyClassification installs a verdict unless a newer one already won.
func (r *Resolver) applyClassification(seq uint64, cls core.Classification) {
	r.mu.Lock()
	if seq <= r.applied {
		stale := r.applied
		r.mu.Unlock()
		slog.Debug("Discarding stale classification", "seq", seq, "applied", stale)
		return
	}
	r.applied = seq
	r.cls = cls
	r.state = core.ResolveState(r.session, cls)
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
}

func (r *Resolver) notify(snap Snapshot) {
	if r.onChange != nil {
		r.onChange(snap)
	}
}
