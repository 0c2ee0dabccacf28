package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type (
	// Role is the coarse authorization level stored on a profile.
	Role string

	// Date is a calendar day; the time-of-day component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is an amount in integer cents. Negative values are valid
	// (refunds, corrections).
	Money struct {
		Cents int64
	}

	// Session identifies the current authenticated principal. The backend
	// owns it; we only hold a read-only copy per resolution cycle.
	Session struct {
		UserID string
		Email  string
	}

	// Profile is the backend-stored record for a registered principal.
	// A profile row is created only after email verification completes, so
	// presence of the row doubles as the verified flag.
	Profile struct {
		ID    string
		Email string
		Role  Role
	}

	// Transaction is a single ledger row. OwnerID is immutable once created.
	Transaction struct {
		ID          string
		Date        Date
		Recipient   string
		Amount      Money
		Creditor    string
		Bank        string
		Description string
		Project     string
		OwnerID     string
		OwnerEmail  string
	}

	// TransactionInput carries the user-supplied fields of a new transaction.
	// Amount arrives as the raw form string and is parsed before submission.
	TransactionInput struct {
		Date        Date
		Recipient   string
		Amount      string
		Creditor    string
		Bank        string
		Description string
		Project     string
	}
)

// Error taxonomy: backend failures are retryable and surfaced as a generic
// message, validation failures never reach the gateway, authorization
// failures abort client-side before any network call.
var (
	ErrBackend       = errors.New("backend unavailable")
	ErrValidation    = errors.New("invalid input")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")

	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyRecipient  = errors.New("empty recipient")
	ErrEmptyCreditor   = errors.New("empty creditor")
	ErrEmptyBank       = errors.New("empty bank")
	ErrUnverifiedEmail = errors.New("email not verified")
	ErrMissingTarget   = errors.New("admin must select a target user")
)

// NormalizeRole maps a stored role string to a known role, defaulting to
// user when the value is empty or unrecognized.
func NormalizeRole(s string) Role {
	if Role(strings.TrimSpace(s)) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports whether the date is unset (used for optional filter bounds).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(t.Creditor) == "" {
		return ErrEmptyCreditor
	}
	if strings.TrimSpace(t.Bank) == "" {
		return ErrEmptyBank
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return errors.New("missing owner")
	}
	return nil
}
