package domain

import "errors"

// Sentinel errors for the identity domain. Use errors.Is() to check these.
var (
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another user of the agency already has the email.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials covers unknown email, inactive user and wrong
	// password alike so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken indicates a refresh token that fails to verify
	// or is no longer in the token store.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrSelfDeactivation indicates an admin deactivating their own account.
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")

	ErrInvalidInput = errors.New("invalid user input")
)
