package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/services/identity/domain"
	"github.com/ghuser/emssupply/services/identity/domain/models"
)

func TestUserService_CreateAndScope(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()
	admin := f.admin.Principal()

	u, err := f.svc.Create(ctx, admin, NewUser{
		Email: "New.Hire@County-EMS.org", Password: "password-123", FirstName: "Lee", LastName: "Park", Role: auth.RoleSupervisor,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.hire@county-ems.org", u.Email)
	assert.True(t, u.Active)

	_, err = f.svc.Create(ctx, admin, NewUser{
		Email: "new.hire@county-ems.org", Password: "password-123", FirstName: "Lee", LastName: "Park", Role: auth.RoleMedic,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = f.svc.Create(ctx, admin, NewUser{Email: "x@y.org", Password: "password-123", Role: "chief"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	outsider := auth.Principal{UserID: uuid.New(), AgencyID: uuid.New(), Role: auth.RoleAdmin}
	_, err = f.svc.Get(ctx, outsider, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users, err := f.svc.List(ctx, admin)
	require.NoError(t, err)
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.LastName
	}
	assert.Equal(t, []string{"Chief", "Park", "Ruiz"}, names)
}

func TestUserService_UpdateMeIgnoresPrivilegedFields(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	role := auth.RoleAdmin
	phone := "555-0100"
	u, err := f.svc.UpdateMe(ctx, f.medic.Principal(), models.Patch{Phone: &phone, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", u.Phone)
	assert.Equal(t, auth.RoleMedic, u.Role)

	_, err = f.svc.UpdateMe(ctx, f.medic.Principal(), models.Patch{Role: &role})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserService_Deactivate(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()
	admin := f.admin.Principal()

	assert.ErrorIs(t, f.svc.Deactivate(ctx, admin, f.admin.ID), domain.ErrSelfDeactivation)
	inactive := false
	_, err := f.svc.Update(ctx, admin, f.admin.ID, models.Patch{Active: &inactive})
	assert.ErrorIs(t, err, domain.ErrSelfDeactivation)

	require.NoError(t, f.svc.Deactivate(ctx, admin, f.medic.ID))
	active, err := f.users.IsActive(ctx, f.medic.AgencyID, f.medic.ID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, f.svc.Deactivate(ctx, admin, uuid.New()), domain.ErrUserNotFound)
}
