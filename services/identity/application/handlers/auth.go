package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/identity/application/services"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email" example:"medic@county-ems.org"`
	Password string `json:"password" validate:"required"`
} // @name LoginRequest

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
} // @name RefreshRequest

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
} // @name LogoutRequest

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
} // @name ForgotPasswordRequest

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
} // @name ResetPasswordRequest

const forgotPasswordMessage = "If the email exists, a reset link has been sent"

// AuthHandler serves the public /auth endpoints.
type AuthHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewAuthHandler(svc *appsvcs.Services, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Login exchanges credentials for a token pair.
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, LoginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User: SessionUser{
			ID:        sess.User.ID,
			Email:     sess.User.Email,
			FirstName: sess.User.FirstName,
			LastName:  sess.User.LastName,
			Role:      string(sess.User.Role),
			AgencyID:  sess.User.AgencyID,
		},
	})
}

// Refresh issues a new access token.
//
//	@Summary	Refresh access token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RefreshRequest	true	"Refresh token"
//	@Success	200		{object}	RefreshResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RefreshRequest](w, r)
	if !ok {
		return
	}
	access, err := h.svc.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RefreshResponse{AccessToken: access})
}

// Logout revokes a refresh token.
//
//	@Summary	Log out
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LogoutRequest	false	"Refresh token"
//	@Success	200		{object}	MessageResponse
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	// The body is optional.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.svc.Auth.Logout(r.Context(), req.RefreshToken); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// ForgotPassword starts a password reset. The response never reveals
// whether the email exists.
//
//	@Summary	Request password reset
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ForgotPasswordRequest	true	"Email"
//	@Success	200		{object}	MessageResponse
//	@Router		/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ForgotPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: forgotPasswordMessage})
}

// ResetPassword sets a new password using a reset token.
//
//	@Summary	Reset password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ResetPasswordRequest	true	"Token and new password"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ResetPasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.Auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Password reset successful"})
}
