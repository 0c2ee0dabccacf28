package backend

import (
	"context"
	"sync"

	"ledger/internal/core"
)

// SessionBroker owns the current session and fans out change notifications
// to subscribers in arrival order. Both gateway implementations embed it for
// the auth-event half of the contract: the memory gateway outright, the
// sqlite gateway alongside its database handle.
type SessionBroker struct {
	mu      sync.Mutex
	current *core.Session
	nextID  int
	subs    map[int]func(*core.Session)
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{subs: make(map[int]func(*core.Session))}
}

// Current returns a copy of the active session, or nil.
func (b *SessionBroker) Current() *core.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	s := *b.current
	return &s
}

// SignIn installs a session and notifies subscribers.
func (b *SessionBroker) SignIn(s core.Session) {
	b.set(&s)
}

// SignOut destroys the session and notifies subscribers with nil.
func (b *SessionBroker) SignOut() {
	b.set(nil)
}

// Refresh re-announces the current session, as a token refresh would.
func (b *SessionBroker) Refresh() {
	b.mu.Lock()
	s := b.current
	b.mu.Unlock()
	if s != nil {
		b.set(s)
	}
}

func (b *SessionBroker) set(s *core.Session) {
	b.mu.Lock()
	b.current = s
	fns := make([]func(*core.Session), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	// Deliver outside the lock so a listener may resubscribe or sign out.
	for _, fn := range fns {
		if s == nil {
			fn(nil)
		} else {
			dup := *s
			fn(&dup)
		}
	}
}

// Subscribe registers a change listener and returns its cancellable handle.
func (b *SessionBroker) Subscribe(fn func(*core.Session)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return &brokerSubscription{broker: b, id: id}
}

type brokerSubscription struct {
	broker *SessionBroker
	id     int
	once   sync.Once
}

// Cancel releases the listener. Safe to call more than once.
func (s *brokerSubscription) Cancel() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s.id)
		s.broker.mu.Unlock()
	})
}

// compile-time check that the broker satisfies the auth subscription side
var _ interface {
	Subscribe(func(*core.Session)) Subscription
} = (*SessionBroker)(nil)

// GetSession adapts Current to the AuthGateway signature.
func (b *SessionBroker) GetSession(_ context.Context) (*core.Session, error) {
	return b.Current(), nil
}
