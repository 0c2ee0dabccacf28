package authz

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/core"
)

type profileStub struct {
	profiles map[string]core.Profile
	err      error
}

func (s *profileStub) GetProfile(_ context.Context, id string) (core.Profile, error) {
	if s.err != nil {
		return core.Profile{}, s.err
	}
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return core.Profile{}, core.ErrNotFound
}

func TestClassify(t *testing.T) {
	stub := &profileStub{profiles: map[string]core.Profile{
		"admin-1": {ID: "admin-1", Email: "a@example.com", Role: core.RoleAdmin},
		"user-1":  {ID: "user-1", Email: "u@example.com", Role: core.RoleUser},
		"blank-1": {ID: "blank-1", Email: "b@example.com", Role: ""},
	}}
	c := New(stub)

	cases := []struct {
		userID string
		want   core.Classification
	}{
		{"admin-1", core.Classification{Verified: true, Role: core.RoleAdmin}},
		{"user-1", core.Classification{Verified: true, Role: core.RoleUser}},
		// Empty stored role defaults to user.
		{"blank-1", core.Classification{Verified: true, Role: core.RoleUser}},
		// No profile row: the principal has not verified their email yet.
		{"ghost", core.Classification{Verified: false, Role: core.RoleUser}},
	}
	for _, tc := range cases {
		if got := c.Classify(context.Background(), tc.userID); got != tc.want {
			t.Fatalf("Classify(%q) = %+v, want %+v", tc.userID, got, tc.want)
		}
	}
}

func TestClassifySwallowsBackendErrors(t *testing.T) {
	c := New(&profileStub{err: errors.New("connection refused")})

	got := c.Classify(context.Background(), "user-1")
	want := core.Classification{Verified: false, Role: core.RoleUser}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
