package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
)

type stateResponse struct {
	State    string `json:"state"`
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Verified bool   `json:"verified"`
	Role     string `json:"role,omitempty"`
}

type transactionJSON struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Recipient   string `json:"recipient"`
	AmountCents int64  `json:"amount_cents"`
	Creditor    string `json:"creditor"`
	Bank        string `json:"bank"`
	Description string `json:"description,omitempty"`
	Project     string `json:"project,omitempty"`
	OwnerID     string `json:"owner_id"`
	OwnerEmail  string `json:"owner_email,omitempty"`
}

type listResponse struct {
	Transactions []transactionJSON `json:"transactions"`
	Count        int               `json:"count"`
}

type dashboardResponse struct {
	Transactions []transactionJSON `json:"transactions"`
	Count        int               `json:"count"`
	TotalCents   int64             `json:"total_cents"`
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type usersResponse struct {
	Users []userJSON `json:"users"`
	Count int        `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionJSON{
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Recipient:   tx.Recipient,
			AmountCents: tx.Amount.Cents,
			Creditor:    tx.Creditor,
			Bank:        tx.Bank,
			Description: tx.Description,
			Project:     tx.Project,
			OwnerID:     tx.OwnerID,
			OwnerEmail:  tx.OwnerEmail,
		})
	}
	return out
}

func dashboardCacheKey(p services.Principal, version int64, criteria core.FilterCriteria) string {
	return fmt.Sprintf("%s|%s|%d|%s", p.UserID, p.State, version, criteria.Key())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request error", "status", status, "error", msg, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
