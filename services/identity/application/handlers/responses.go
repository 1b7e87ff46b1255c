package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/identity/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid credentials"`
} // @name IdentityErrorResponse

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
} // @name IdentityMessageResponse

// SessionUser is the user summary returned on login.
type SessionUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"     example:"medic@county-ems.org"`
	FirstName string    `json:"firstName" example:"Dana"`
	LastName  string    `json:"lastName"  example:"Ruiz"`
	Role      string    `json:"role"      example:"medic"`
	AgencyID  uuid.UUID `json:"agencyId"`
} // @name SessionUser

// LoginResponse carries the token pair.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         SessionUser `json:"user"`
} // @name LoginResponse

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
} // @name RefreshResponse

// UserResponse is an agency member without credentials.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	AgencyID  uuid.UUID `json:"agency_id"`
	Email     string    `json:"email"      example:"medic@county-ems.org"`
	FirstName string    `json:"first_name" example:"Dana"`
	LastName  string    `json:"last_name"  example:"Ruiz"`
	Role      string    `json:"role"       example:"medic"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
} // @name UserResponse

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
} // @name UserEnvelope

// UsersResponse wraps GET /users.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
} // @name UsersResponse

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		AgencyID:  u.AgencyID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
