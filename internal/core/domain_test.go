package core

import (
	"testing"
	"time"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"user", RoleUser},
		{"", RoleUser},
		{"superuser", RoleUser},
		{" admin ", RoleAdmin},
	}
	for i, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("case %d: NormalizeRole(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"", "15/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:      NewDate(2024, 1, 1),
		Recipient: "ACME",
		Amount:    Money{Cents: 1050},
		Creditor:  "John",
		Bank:      "Big Bank",
		OwnerID:   "u1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Recipient: "a", Creditor: "c", Bank: "b", OwnerID: "u"},                             // zero date
		{Date: NewDate(2024, 1, 1), Creditor: "c", Bank: "b", OwnerID: "u"},                  // no recipient
		{Date: NewDate(2024, 1, 1), Recipient: "a", Bank: "b", OwnerID: "u"},                 // no creditor
		{Date: NewDate(2024, 1, 1), Recipient: "a", Creditor: "c", OwnerID: "u"},             // no bank
		{Date: NewDate(2024, 1, 1), Recipient: "a", Creditor: "c", Bank: "b"},                // no owner
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
