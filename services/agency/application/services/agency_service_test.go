package services

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/agency/domain"
	"github.com/ghuser/emssupply/services/agency/domain/models"
	"github.com/ghuser/emssupply/services/agency/infrastructure/persistence/memory"
)

func newAgencyFixture(t *testing.T) (*AgencyService, auth.Principal) {
	t.Helper()
	store := memory.NewStore()
	agencyID := uuid.New()
	store.AddAgency(models.Agency{ID: agencyID, Name: "County EMS", Active: true})
	svc := NewAgencyService(store, logger.NewWithWriter(io.Discard, "error"))
	return svc, auth.Principal{UserID: uuid.New(), AgencyID: agencyID, Role: auth.RoleAdmin}
}

func TestAgencyService_SettingsDefaults(t *testing.T) {
	svc, admin := newAgencyFixture(t)
	ctx := context.Background()

	a, err := svc.Agency(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 60, 90}, a.Settings.AlertExpiringDays)

	a, err = svc.UpdateAgency(ctx, admin, models.AgencyPatch{Settings: &models.Settings{AlertExpiringDays: []int{45, 14, 45}}})
	require.NoError(t, err)
	assert.Equal(t, []int{14, 45}, a.Settings.AlertExpiringDays)

	_, err = svc.UpdateAgency(ctx, admin, models.AgencyPatch{Settings: &models.Settings{AlertExpiringDays: []int{0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	empty := ""
	_, err = svc.UpdateAgency(ctx, admin, models.AgencyPatch{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Agency(ctx, auth.Principal{AgencyID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrAgencyNotFound)
}

func TestAgencyService_StationsAndUnits(t *testing.T) {
	svc, admin := newAgencyFixture(t)
	ctx := context.Background()

	st, err := svc.CreateStation(ctx, admin, NewStation{Name: "Station 3", City: "Bend", State: "OR"})
	require.NoError(t, err)

	unit, err := svc.CreateUnit(ctx, admin, NewUnit{Name: "Medic 7", Type: models.UnitALS, StationID: &st.ID})
	require.NoError(t, err)
	assert.Equal(t, "Station 3", unit.StationName)
	_, err = svc.CreateUnit(ctx, admin, NewUnit{Name: "Engine 1", Type: models.UnitBLS, StationID: &st.ID})
	require.NoError(t, err)

	stations, err := svc.Stations(ctx, admin)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, 2, stations[0].UnitCount)

	inactive := false
	_, err = svc.UpdateUnit(ctx, admin, unit.ID, models.UnitPatch{Active: &inactive})
	require.NoError(t, err)
	stations, err = svc.Stations(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stations[0].UnitCount, "inactive units are not counted")

	units, err := svc.Units(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Engine 1", "Medic 7"}, []string{units[0].Name, units[1].Name})

	_, err = svc.CreateUnit(ctx, admin, NewUnit{Name: "Boat 1", Type: "boat"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	foreign := uuid.New()
	_, err = svc.CreateUnit(ctx, admin, NewUnit{Name: "Medic 9", Type: models.UnitALS, StationID: &foreign})
	assert.ErrorIs(t, err, domain.ErrStationNotFound)

	outsider := auth.Principal{UserID: uuid.New(), AgencyID: uuid.New(), Role: auth.RoleAdmin}
	name := "Hijacked"
	_, err = svc.UpdateStation(ctx, outsider, st.ID, models.StationPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrStationNotFound)

	unassign := uuid.Nil
	moved, err := svc.UpdateUnit(ctx, admin, unit.ID, models.UnitPatch{StationID: &unassign})
	require.NoError(t, err)
	assert.Nil(t, moved.StationID)
	assert.Empty(t, moved.StationName)
}
