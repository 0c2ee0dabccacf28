package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"10.5", 1050, true},
		{"-3.25", -325, true},
		{"-3,25", -325, true},
		{"100", 10000, true},
		{"0", 0, true},
		{"12.345", 1235, true}, // half-up at the third decimal
		{"12.346", 1235, true},
		{"+7.50", 750, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
		{"12a.50", 0, false},
		{"-", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q): expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.in)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("case %d (%q): got %d, want %d", i, tc.in, got, tc.want)
		}
	}
}

func TestMoneyValue(t *testing.T) {
	if v := (Money{Cents: 10725}).Value(); v != 107.25 {
		t.Fatalf("got %v, want 107.25", v)
	}
	if v := (Money{Cents: -325}).Value(); v != -3.25 {
		t.Fatalf("got %v, want -3.25", v)
	}
}
