package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func testPrincipal(role Role) Principal {
	return Principal{UserID: uuid.New(), AgencyID: uuid.New(), Role: role, Email: "medic@example.org"}
}

func TestWithPrincipal_PrincipalFromCtx(t *testing.T) {
	p := testPrincipal(RoleMedic)
	ctx := WithPrincipal(context.Background(), p)

	got, err := PrincipalFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}

	agencyID, err := AgencyIDFromCtx(ctx)
	if err != nil || agencyID != p.AgencyID {
		t.Fatalf("expected agency %v, got %v (err %v)", p.AgencyID, agencyID, err)
	}
}

func TestPrincipalFromCtx_EmptyContext(t *testing.T) {
	_, err := PrincipalFromCtx(context.Background())
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestPrincipalFromCtx_NilAgency(t *testing.T) {
	p := testPrincipal(RoleAdmin)
	p.AgencyID = uuid.Nil
	_, err := PrincipalFromCtx(WithPrincipal(context.Background(), p))
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound for nil agency, got %v", err)
	}
}

func TestPrincipal_HasRole(t *testing.T) {
	tests := []struct {
		role  Role
		allow []Role
		want  bool
	}{
		{RoleAdmin, []Role{RoleAdmin}, true},
		{RoleSupervisor, []Role{RoleAdmin, RoleSupervisor}, true},
		{RoleMedic, []Role{RoleAdmin, RoleSupervisor}, false},
		{RoleMedic, nil, false},
	}
	for _, tt := range tests {
		if got := testPrincipal(tt.role).HasRole(tt.allow...); got != tt.want {
			t.Errorf("HasRole(%s, %v) = %v, want %v", tt.role, tt.allow, got, tt.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleSupervisor, RoleMedic} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Role("dispatcher").Valid() {
		t.Error("unexpected valid role 'dispatcher'")
	}
}
