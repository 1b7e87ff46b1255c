package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/httpx"
)

// Role is the attribute used for authorization decisions.
type Role string

// Roles recognised by the service.
const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleMedic      Role = "medic"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleMedic:
		return true
	default:
		return false
	}
}

// Principal is the authenticated caller resolved from a bearer token.
// Every agency-scoped query filters by AgencyID.
type Principal struct {
	UserID   uuid.UUID
	AgencyID uuid.UUID
	Role     Role
	Email    string
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	return slices.Contains(roles, p.Role)
}

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrPrincipalNotFound is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrPrincipalNotFound = errors.New("principal not found in context")

// PrincipalFromCtx extracts the authenticated principal from the request context.
// Returns ErrPrincipalNotFound if none is set or it carries a nil agency or user.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.AgencyID == uuid.Nil || p.UserID == uuid.Nil {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

// AgencyIDFromCtx is a shorthand for PrincipalFromCtx(ctx).AgencyID.
func AgencyIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	p, err := PrincipalFromCtx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return p.AgencyID, nil
}

// WithPrincipal returns a new context with the given principal attached.
// Used by authentication middleware after validating the bearer token.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequirePrincipal returns the request principal or writes 401 and returns false.
func RequirePrincipal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p, err := PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "Not authenticated")
		return Principal{}, false
	}
	return p, true
}
