package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/services/identity/domain"
)

// User is an agency member who signs in with email and password.
type User struct {
	ID           uuid.UUID
	AgencyID     uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         auth.Role
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the identity carried in tokens issued to u.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID, AgencyID: u.AgencyID, Role: u.Role, Email: u.Email}
}

// NormalizeEmail lower-cases and trims an email address. Emails are stored
// and looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *auth.Role
	Active    *bool
	Password  *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Role == nil && p.Active == nil && p.Password == nil
}

// Apply copies the set fields onto u. The password is hashed with bcrypt.
func (p Patch) Apply(u *User) error {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *p.Role)
		}
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	if p.Password != nil {
		hash, err := HashPassword(*p.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return nil
}

// HashPassword enforces the minimum length and returns the bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < auth.MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, auth.MinPasswordLength)
	}
	return auth.HashPassword(password)
}
