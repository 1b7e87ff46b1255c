package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/agency/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"Station not found"`
} // @name AgencyErrorResponse

// SettingsBody is the agency settings blob.
type SettingsBody struct {
	AlertExpiringDays []int `json:"alert_expiring_days" validate:"omitempty,dive,gt=0" example:"30,60,90"`
} // @name AgencySettings

type AgencyResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"    example:"County EMS"`
	Address   string       `json:"address"`
	City      string       `json:"city"`
	State     string       `json:"state"   example:"OR"`
	Zip       string       `json:"zip"`
	Phone     string       `json:"phone"`
	Email     string       `json:"email"`
	Settings  SettingsBody `json:"settings"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
} // @name AgencyResponse

type AgencyEnvelope struct {
	Agency AgencyResponse `json:"agency"`
} // @name AgencyEnvelope

type StationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"       example:"Station 3"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Active    bool      `json:"active"`
	UnitCount int       `json:"unit_count" example:"2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
} // @name StationResponse

type StationEnvelope struct {
	Station StationResponse `json:"station"`
} // @name StationEnvelope

type StationsResponse struct {
	Stations []StationResponse `json:"stations"`
} // @name StationsResponse

type UnitResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"         example:"Medic 7"`
	Type        string     `json:"type"         example:"als"`
	StationID   *uuid.UUID `json:"station_id"`
	StationName string     `json:"station_name" example:"Station 3"`
	VehicleID   string     `json:"vehicle_id"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
} // @name UnitResponse

type UnitEnvelope struct {
	Unit UnitResponse `json:"unit"`
} // @name UnitEnvelope

type UnitsResponse struct {
	Units []UnitResponse `json:"units"`
} // @name UnitsResponse

func agencyResponse(a *models.Agency) AgencyResponse {
	return AgencyResponse{
		ID:        a.ID,
		Name:      a.Name,
		Address:   a.Address,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Phone:     a.Phone,
		Email:     a.Email,
		Settings:  SettingsBody{AlertExpiringDays: a.Settings.AlertExpiringDays},
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func stationResponse(s *models.Station) StationResponse {
	return StationResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		Zip:       s.Zip,
		Active:    s.Active,
		UnitCount: s.UnitCount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func unitResponse(u *models.Unit) UnitResponse {
	return UnitResponse{
		ID:          u.ID,
		Name:        u.Name,
		Type:        string(u.Type),
		StationID:   u.StationID,
		StationName: u.StationName,
		VehicleID:   u.VehicleID,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
