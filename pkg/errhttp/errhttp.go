// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a rule to rules for each new domain sentinel error.
package errhttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/pkg/telemetry"
	agencydomain "github.com/ghuser/emssupply/services/agency/domain"
	alertsdomain "github.com/ghuser/emssupply/services/alerts/domain"
	catalogdomain "github.com/ghuser/emssupply/services/catalog/domain"
	identitydomain "github.com/ghuser/emssupply/services/identity/domain"
	ledgerdomain "github.com/ghuser/emssupply/services/ledger/domain"
)

// rule maps a sentinel to a status. A non-empty message replaces the error
// text in the response body.
type rule struct {
	target  error
	status  int
	message string
}

var rules = []rule{
	{auth.ErrPrincipalNotFound, http.StatusUnauthorized, "Not authenticated"},

	{identitydomain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{identitydomain.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{identitydomain.ErrInvalidResetToken, http.StatusBadRequest, "Invalid or expired reset token"},
	{identitydomain.ErrSelfDeactivation, http.StatusBadRequest, "Cannot deactivate your own account"},
	{identitydomain.ErrEmailTaken, http.StatusConflict, "Email already exists"},
	{identitydomain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{identitydomain.ErrInvalidInput, http.StatusBadRequest, ""},

	{agencydomain.ErrAgencyNotFound, http.StatusNotFound, "Agency not found"},
	{agencydomain.ErrStationNotFound, http.StatusNotFound, "Station not found"},
	{agencydomain.ErrUnitNotFound, http.StatusNotFound, "Unit not found"},
	{agencydomain.ErrInvalidInput, http.StatusBadRequest, ""},

	{catalogdomain.ErrSupplyNotFound, http.StatusNotFound, "Supply not found"},
	{catalogdomain.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{catalogdomain.ErrInvalidInput, http.StatusBadRequest, ""},

	{ledgerdomain.ErrInventoryNotFound, http.StatusNotFound, "Inventory record not found"},
	{ledgerdomain.ErrLocationNotFound, http.StatusNotFound, "Location not found"},
	{ledgerdomain.ErrSupplyNotFound, http.StatusNotFound, "Supply not found"},
	{ledgerdomain.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{ledgerdomain.ErrOrderItemNotFound, http.StatusNotFound, "Order item not found"},
	{ledgerdomain.ErrInventoryExists, http.StatusConflict, "Inventory record already exists"},
	{ledgerdomain.ErrOrderNumberConflict, http.StatusConflict, "Order number already exists"},
	{ledgerdomain.ErrInsufficientStock, http.StatusBadRequest, ""},
	{ledgerdomain.ErrInvalidOrderState, http.StatusBadRequest, ""},
	{ledgerdomain.ErrInvalidInput, http.StatusBadRequest, ""},

	{alertsdomain.ErrAlertNotFound, http.StatusNotFound, "Alert not found"},
	{alertsdomain.ErrInvalidFilter, http.StatusBadRequest, ""},
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors are logged, reported to Sentry and answered with a
// generic 500.
func WriteError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, msg := Resolve(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(ctx, "request failed", "status", status, "error", err)
		telemetry.CaptureError(ctx, err)
	}
	httpx.JSONError(w, status, msg)
}

// Resolve returns the status and client-facing message for err.
func Resolve(err error) (int, string) {
	for _, r := range rules {
		if errors.Is(err, r.target) {
			if r.message != "" {
				return r.status, r.message
			}
			return r.status, err.Error()
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
