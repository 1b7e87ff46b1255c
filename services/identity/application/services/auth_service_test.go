package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
	"github.com/ghuser/emssupply/services/identity/infrastructure/persistence/memory"
)

const testPassword = "correct-horse"

type identityFixture struct {
	users  *memory.UserStore
	tokens *auth.TokenManager
	store  *auth.MemoryTokenStore
	auth   *AuthService
	svc    *UserService
	admin  *models.User
	medic  *models.User
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "error")
	f := &identityFixture{
		users:  memory.NewUserStore(),
		tokens: auth.NewTokenManager("test-access-secret-must-be-32-bytes!", "test-refresh-secret-must-be-32-bytes", time.Hour, 24*time.Hour),
		store:  auth.NewMemoryTokenStore(),
	}
	f.auth = NewAuthService(f.users, f.tokens, f.store, time.Hour, log)
	f.svc = NewUserService(f.users, log)

	hash, err := models.HashPassword(testPassword)
	require.NoError(t, err)
	agencyID := uuid.New()
	f.admin = &models.User{ID: uuid.New(), AgencyID: agencyID, Email: "chief@county-ems.org", PasswordHash: hash, FirstName: "Ana", LastName: "Chief", Role: auth.RoleAdmin, Active: true}
	f.medic = &models.User{ID: uuid.New(), AgencyID: agencyID, Email: "medic@county-ems.org", PasswordHash: hash, FirstName: "Dana", LastName: "Ruiz", Role: auth.RoleMedic, Active: true}
	require.NoError(t, f.users.Create(context.Background(), f.admin))
	require.NoError(t, f.users.Create(context.Background(), f.medic))
	return f
}

func TestAuthService_Login(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, "  MEDIC@County-EMS.org ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, f.medic.ID, sess.User.ID)

	p, err := f.tokens.ParseAccess(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.medic.Principal(), p)

	_, err = f.auth.Login(ctx, "medic@county-ems.org", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "nobody@county-ems.org", testPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	f.medic.Active = false
	require.NoError(t, f.users.Update(ctx, f.medic))
	_, err = f.auth.Login(ctx, "medic@county-ems.org", testPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "inactive users look like unknown ones")
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Login(ctx, f.admin.Email, testPassword)
	require.NoError(t, err)

	access, err := f.auth.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = f.auth.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	require.NoError(t, f.auth.Logout(ctx, sess.RefreshToken))
	_, err = f.auth.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken, "revoked on logout")

	assert.NoError(t, f.auth.Logout(ctx, ""))
	assert.NoError(t, f.auth.Logout(ctx, "garbage"))
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	require.NoError(t, f.auth.ForgotPassword(ctx, "nobody@county-ems.org"))
	require.NoError(t, f.auth.ForgotPassword(ctx, f.medic.Email))

	token := auth.NewTokenID()
	require.NoError(t, f.store.Put(ctx, auth.KindPasswordReset, token, f.medic.ID, time.Hour))

	err := f.auth.ResetPassword(ctx, token, "short")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.auth.ResetPassword(ctx, token, "new-password-123"))
	_, err = f.auth.Login(ctx, f.medic.Email, "new-password-123")
	require.NoError(t, err)

	err = f.auth.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken, "tokens are single use")
}
