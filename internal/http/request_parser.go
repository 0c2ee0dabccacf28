package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ledger/internal/core"
)

const maxRequestBody = 64 * 1024

// transactionRequest is the JSON body for creating a transaction. The
// amount travels as the raw user string so parsing failures surface as
// validation errors, not JSON errors.
type transactionRequest struct {
	Date         string `json:"date"`
	Recipient    string `json:"recipient"`
	Amount       string `json:"amount"`
	Creditor     string `json:"creditor"`
	Bank         string `json:"bank"`
	Description  string `json:"description"`
	Project      string `json:"project"`
	TargetUserID string `json:"target_user_id"`
}

func (r transactionRequest) Input() core.TransactionInput {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		date = core.Date{}
	}
	return core.TransactionInput{
		Date:        date,
		Recipient:   sanitizeInput(r.Recipient),
		Amount:      strings.TrimSpace(r.Amount),
		Creditor:    sanitizeInput(r.Creditor),
		Bank:        sanitizeInput(r.Bank),
		Description: sanitizeInput(r.Description),
		Project:     sanitizeInput(r.Project),
	}
}

// ParseTransactionRequest decodes and sanitizes a create-transaction body.
func ParseTransactionRequest(r *http.Request) (transactionRequest, error) {
	var req transactionRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, fmt.Errorf("read request body: %w", err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %w", err)
	}
	req.TargetUserID = strings.TrimSpace(req.TargetUserID)
	return req, nil
}

// ParseFilterCriteria extracts dashboard filter parameters from the query
// string. Empty parameters mean "match everything"; malformed dates are
// an error rather than a silent no-filter.
func ParseFilterCriteria(query url.Values) (core.FilterCriteria, error) {
	criteria := core.FilterCriteria{
		Description: strings.TrimSpace(query.Get("description")),
		Project:     strings.TrimSpace(query.Get("project")),
	}

	if v := strings.TrimSpace(query.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.FilterCriteria{}, fmt.Errorf("invalid start_date %q: expected YYYY-MM-DD", v)
		}
		criteria.StartDate = d
	}
	if v := strings.TrimSpace(query.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.FilterCriteria{}, fmt.Errorf("invalid end_date %q: expected YYYY-MM-DD", v)
		}
		criteria.EndDate = d
	}

	return criteria, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
