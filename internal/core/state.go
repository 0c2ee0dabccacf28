package core

// ApplicationState is the five-way classification that drives what the
// presentation layer is allowed to render. It is derived, never persisted,
// and recomputed on every session-change event.
type ApplicationState int

const (
	StateLoading ApplicationState = iota
	StateUnauthenticated
	StateUnverified
	StateUser
	StateAdmin
)

// Classification is the authorization classifier's verdict for a session.
type Classification struct {
	Verified bool
	Role     Role
}

func (s ApplicationState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnverified:
		return "unverified"
	case StateUser:
		return "user"
	case StateAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Authenticated reports whether a session is present.
func (s ApplicationState) Authenticated() bool {
	return s == StateUnverified || s == StateUser || s == StateAdmin
}

// Verified reports whether the principal may write transactions.
func (s ApplicationState) Verified() bool {
	return s == StateUser || s == StateAdmin
}

// Admin reports whether the principal sees all owners' rows.
func (s ApplicationState) Admin() bool {
	return s == StateAdmin
}

// ResolveState maps a session and its classification to an application
// state. Unverified takes precedence over role: an unverified admin is
// still gated like an unverified user.
//
//	session  verified  role   -> state
//	absent   -         -      -> unauthenticated
//	present  false     any    -> unverified
//	present  true      user   -> user
//	present  true      admin  -> admin
func ResolveState(session *Session, c Classification) ApplicationState {
	if session == nil {
		return StateUnauthenticated
	}
	if !c.Verified {
		return StateUnverified
	}
	if c.Role == RoleAdmin {
		return StateAdmin
	}
	return StateUser
}
