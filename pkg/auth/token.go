package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// claim validation. Callers must not distinguish the cause to clients.
var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "emssupply"

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	AgencyID uuid.UUID `json:"agency_id"`
	Role     Role      `json:"role"`
	Email    string    `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. The ID (jti) is also
// stored server-side so a refresh token can be revoked before it expires.
type RefreshClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	AgencyID uuid.UUID `json:"agency_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access and refresh tokens.
// Access and refresh tokens are signed with different secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens, used for the server-side record.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// IssueAccess signs an access token for p.
func (m *TokenManager) IssueAccess(p Principal) (string, error) {
	now := m.now()
	claims := AccessClaims{
		UserID:   p.UserID,
		AgencyID: p.AgencyID,
		Role:     p.Role,
		Email:    p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh signs a refresh token for p and returns it with its jti.
func (m *TokenManager) IssueRefresh(p Principal) (token, jti string, err error) {
	now := m.now()
	jti = NewTokenID()
	claims := RefreshClaims{
		UserID:   p.UserID,
		AgencyID: p.AgencyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return token, jti, nil
}

// ParseAccess verifies an access token and returns the principal it carries.
func (m *TokenManager) ParseAccess(token string) (Principal, error) {
	var claims AccessClaims
	if err := m.parse(token, m.accessSecret, &claims); err != nil {
		return Principal{}, err
	}
	if claims.UserID == uuid.Nil || claims.AgencyID == uuid.Nil || !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		UserID:   claims.UserID,
		AgencyID: claims.AgencyID,
		Role:     claims.Role,
		Email:    claims.Email,
	}, nil
}

// ParseRefresh verifies a refresh token.
func (m *TokenManager) ParseRefresh(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := m.parse(token, m.refreshSecret, &claims); err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (m *TokenManager) parse(token string, secret []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
