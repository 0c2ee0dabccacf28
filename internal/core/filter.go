package core

import "strings"

// FilterCriteria is the transient filter input. Empty substrings and zero
// dates impose no constraint; both date bounds are inclusive.
type FilterCriteria struct {
	Description string
	Project     string
	StartDate   Date
	EndDate     Date
}

// IsZero reports whether no constraint is set.
func (c FilterCriteria) IsZero() bool {
	return c.Description == "" && c.Project == "" && c.StartDate.IsEmpty() && c.EndDate.IsEmpty()
}

// Key returns a stable cache key for memoizing filter results.
func (c FilterCriteria) Key() string {
	return strings.ToLower(c.Description) + "|" + strings.ToLower(c.Project) +
		"|" + c.StartDate.String() + "|" + c.EndDate.String()
}

// ApplyFilter returns the transactions matching the criteria, preserving
// input order. It is pure: no side effects, same inputs same output.
func ApplyFilter(transactions []Transaction, c FilterCriteria) []Transaction {
	if c.IsZero() {
		out := make([]Transaction, len(transactions))
		copy(out, transactions)
		return out
	}
	out := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !matchSubstring(tx.Description, c.Description) {
			continue
		}
		if !matchSubstring(tx.Project, c.Project) {
			continue
		}
		if !c.StartDate.IsEmpty() && tx.Date.Before(c.StartDate.Time) {
			continue
		}
		if !c.EndDate.IsEmpty() && tx.Date.After(c.EndDate.Time) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Total sums the amounts of the given transactions in integer cents.
func Total(transactions []Transaction) Money {
	var cents int64
	for _, tx := range transactions {
		cents += tx.Amount.Cents
	}
	return Money{Cents: cents}
}

// matchSubstring is a case-insensitive substring match. An empty criterion
// matches every row, including rows with a missing field; a non-empty
// criterion never matches a missing field.
func matchSubstring(field, criterion string) bool {
	if criterion == "" {
		return true
	}
	if field == "" {
		return false
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(criterion))
}
