package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
)

// ActiveUserChecker confirms that a token's subject still exists and is active.
type ActiveUserChecker interface {
	IsActive(ctx context.Context, agencyID, userID uuid.UUID) (bool, error)
}

// RequireAuth is a chi middleware that enforces bearer-token authentication.
// It verifies the Authorization header, optionally confirms the user is still
// active, and injects the Principal into the request context.
// Returns 401 Unauthorized if the token is missing, invalid or expired.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(tokens *TokenManager, users ActiveUserChecker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			p, err := tokens.ParseAccess(raw)
			if err != nil {
				log.WarnContext(r.Context(), "rejected access token", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if users != nil {
				active, err := users.IsActive(r.Context(), p.AgencyID, p.UserID)
				if err != nil {
					log.ErrorContext(r.Context(), "active user check failed", "user_id", p.UserID, "error", err)
					httpx.JSONError(w, http.StatusUnauthorized, "Authentication failed")
					return
				}
				if !active {
					httpx.JSONError(w, http.StatusUnauthorized, "User not found or inactive")
					return
				}
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = logger.WithContextAttrs(ctx, "agency_id", p.AgencyID.String(), "user_id", p.UserID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects principals whose role is not in roles with 403.
// Must be mounted after RequireAuth.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSONError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !p.HasRole(roles...) {
				httpx.JSONError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
