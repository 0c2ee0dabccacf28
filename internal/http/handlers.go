package http

import (
	"errors"
	"log/slog"
	"net/http"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

// principal resolves the acting caller from the session snapshot. The
// second return is false when the request was already answered.
func (s *Server) principal(w http.ResponseWriter, r *http.Request) (services.Principal, bool) {
	snap := s.resolver.Snapshot()
	switch {
	case snap.State == core.StateLoading:
		writeError(w, r, http.StatusServiceUnavailable, "session still resolving")
		return services.Principal{}, false
	case snap.State == core.StateUnauthenticated:
		writeError(w, r, http.StatusUnauthorized, "no active session")
		return services.Principal{}, false
	}
	return services.Principal{UserID: snap.Session.UserID, State: snap.State}, true
}

// verifiedPrincipal additionally rejects unverified sessions. Unverified
// callers can see their state but nothing else.
func (s *Server) verifiedPrincipal(w http.ResponseWriter, r *http.Request) (services.Principal, bool) {
	p, ok := s.principal(w, r)
	if !ok {
		return p, false
	}
	if !p.State.Verified() {
		writeError(w, r, http.StatusForbidden, "email not verified")
		return services.Principal{}, false
	}
	return p, true
}

// handleState reports the resolver's current view of the session. This is
// the only endpoint that answers in every state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.resolver.Snapshot()

	resp := stateResponse{State: snap.State.String()}
	if snap.Session != nil {
		resp.UserID = snap.Session.UserID
		resp.Email = snap.Session.Email
		resp.Verified = snap.Classification.Verified
		resp.Role = string(snap.Classification.Role)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDashboard returns the caller's visible transactions, filtered and
// totaled. Results are memoized per principal, filter, and list version.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := s.verifiedPrincipal(w, r)
	if !ok {
		return
	}

	criteria, err := ParseFilterCriteria(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := dashboardCacheKey(p, s.listVersion.Load(), criteria)
	if resp, found := s.dashCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard cache hit", "user_id", p.UserID)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	txs, err := s.txs.List(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filtered := core.ApplyFilter(txs, criteria)
	resp := dashboardResponse{
		Transactions: toTransactionJSON(filtered),
		Count:        len(filtered),
		TotalCents:   core.Total(filtered).Cents,
	}

	s.dashCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.verifiedPrincipal(w, r)
	if !ok {
		return
	}

	req, err := ParseTransactionRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.txs.Insert(r.Context(), p, req.Input(), req.TargetUserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateLists()
	writeJSON(w, http.StatusCreated, listResponse{
		Transactions: toTransactionJSON(list),
		Count:        len(list),
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.verifiedPrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "missing transaction id")
		return
	}

	list, err := s.txs.Delete(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateLists()
	writeJSON(w, http.StatusOK, listResponse{
		Transactions: toTransactionJSON(list),
		Count:        len(list),
	})
}

// handleListUsers returns every known profile. Admin only; the result
// feeds the admin's target-user picker.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := s.verifiedPrincipal(w, r)
	if !ok {
		return
	}
	if !p.State.Admin() {
		writeError(w, r, http.StatusForbidden, "admin only")
		return
	}

	profiles, err := s.auth.ListProfiles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users := make([]userJSON, 0, len(profiles))
	for _, profile := range profiles {
		users = append(users, userJSON{
			ID:    profile.ID,
			Email: profile.Email,
			Role:  string(profile.Role),
		})
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users, Count: len(users)})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateLists()
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service-layer sentinel errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrAuthorization):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
