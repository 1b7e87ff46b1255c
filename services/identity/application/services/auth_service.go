package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
	"github.com/ghuser/emssupply/services/identity/domain/repositories"
)

// Session is the result of a successful login.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService issues and revokes tokens and runs the password reset flow.
type AuthService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	store    auth.TokenStore
	resetTTL time.Duration
	log      logger.Logger
}

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager, store auth.TokenStore, resetTTL time.Duration, log logger.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, store: store, resetTTL: resetTTL, log: log}
}

// Login verifies credentials and returns a token pair. Unknown email,
// inactive user and wrong password all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindActiveByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(u.Principal())
	if err != nil {
		return nil, err
	}
	refresh, jti, err := s.tokens.IssueRefresh(u.Principal())
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, auth.KindRefresh, jti, u.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", u.ID, "agency_id", u.AgencyID)
	return &Session{AccessToken: access, RefreshToken: refresh, User: u}, nil
}

// Refresh issues a new access token for a refresh token that verifies and
// is still recorded in the token store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidRefreshToken
	}
	owner, err := s.store.Lookup(ctx, auth.KindRefresh, claims.ID)
	if errors.Is(err, auth.ErrTokenNotFound) || (err == nil && owner != claims.UserID) {
		return "", domain.ErrInvalidRefreshToken
	}
	if err != nil {
		return "", err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.ErrInvalidRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !u.Active {
		return "", domain.ErrInvalidRefreshToken
	}
	return s.tokens.IssueAccess(u.Principal())
}

// Logout revokes the refresh token if it verifies. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	return s.store.Revoke(ctx, auth.KindRefresh, claims.ID)
}

// ForgotPassword stores a single-use reset token for an active user. Mail
// delivery is out of scope, so the token is logged. Unknown emails are
// silently accepted.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindActiveByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	token := auth.NewTokenID()
	if err := s.store.Put(ctx, auth.KindPasswordReset, token, u.ID, s.resetTTL); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "password reset requested", "user_id", u.ID, "reset_token", token)
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := models.HashPassword(password)
	if err != nil {
		return err
	}
	userID, err := s.store.Consume(ctx, auth.KindPasswordReset, token)
	if errors.Is(err, auth.ErrTokenNotFound) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.InfoContext(ctx, "password reset", "user_id", u.ID)
	return nil
}
