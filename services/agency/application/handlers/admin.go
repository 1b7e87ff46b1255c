package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/agency/application/services"
	"github.com/ghuser/emssupply/services/agency/domain/models"
)

// UpdateAgencyRequest is the request body for PUT /admin/agency.
type UpdateAgencyRequest struct {
	Name     *string       `json:"name"     validate:"omitempty,min=1,max=255"`
	Address  *string       `json:"address"  validate:"omitempty,max=500"`
	City     *string       `json:"city"     validate:"omitempty,max=100"`
	State    *string       `json:"state"    validate:"omitempty,len=2"`
	Zip      *string       `json:"zip"      validate:"omitempty,max=10"`
	Phone    *string       `json:"phone"    validate:"omitempty,max=20"`
	Email    *string       `json:"email"    validate:"omitempty,email"`
	Settings *SettingsBody `json:"settings"`
} // @name UpdateAgencyRequest

// StationRequest is the request body for POST /admin/stations.
type StationRequest struct {
	Name    string `json:"name"    validate:"required,max=255" example:"Station 3"`
	Address string `json:"address" validate:"max=500"`
	City    string `json:"city"    validate:"max=100"`
	State   string `json:"state"   validate:"omitempty,len=2"`
	Zip     string `json:"zip"     validate:"max=10"`
} // @name StationRequest

// UpdateStationRequest is the request body for PUT /admin/stations/{id}.
type UpdateStationRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	City    *string `json:"city"    validate:"omitempty,max=100"`
	State   *string `json:"state"   validate:"omitempty,len=2"`
	Zip     *string `json:"zip"     validate:"omitempty,max=10"`
	Active  *bool   `json:"active"`
} // @name UpdateStationRequest

// UnitRequest is the request body for POST /admin/units.
type UnitRequest struct {
	Name      string     `json:"name"       validate:"required,max=100" example:"Medic 7"`
	Type      string     `json:"type"       validate:"required,unit_type" example:"als"`
	StationID *uuid.UUID `json:"station_id"`
	VehicleID string     `json:"vehicle_id" validate:"max=50"`
} // @name UnitRequest

// UpdateUnitRequest is the request body for PUT /admin/units/{id}. A nil
// UUID station_id unassigns the unit.
type UpdateUnitRequest struct {
	Name      *string    `json:"name"       validate:"omitempty,min=1,max=100"`
	Type      *string    `json:"type"       validate:"omitempty,unit_type"`
	StationID *uuid.UUID `json:"station_id"`
	VehicleID *string    `json:"vehicle_id" validate:"omitempty,max=50"`
	Active    *bool      `json:"active"`
} // @name UpdateUnitRequest

// AdminHandler serves /admin agency, station and unit endpoints.
type AdminHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewAdminHandler(svc *appsvcs.Services, log logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

// GetAgency returns the caller's agency.
//
//	@Summary	Get agency
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	AgencyEnvelope
//	@Router		/admin/agency [get]
func (h *AdminHandler) GetAgency(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	a, err := h.svc.Agency.Agency(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, AgencyEnvelope{Agency: agencyResponse(a)})
}

// UpdateAgency edits the agency profile and settings.
//
//	@Summary	Update agency
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		UpdateAgencyRequest	true	"Fields to change"
//	@Success	200		{object}	AgencyEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/agency [put]
func (h *AdminHandler) UpdateAgency(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateAgencyRequest](w, r)
	if !ok {
		return
	}
	patch := models.AgencyPatch{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if req.Settings != nil {
		patch.Settings = &models.Settings{AlertExpiringDays: req.Settings.AlertExpiringDays}
	}
	a, err := h.svc.Agency.UpdateAgency(r.Context(), p, patch)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, AgencyEnvelope{Agency: agencyResponse(a)})
}

// ListStations returns the agency's stations with active unit counts.
//
//	@Summary	List stations
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	StationsResponse
//	@Router		/admin/stations [get]
func (h *AdminHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	stations, err := h.svc.Agency.Stations(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]StationResponse, len(stations))
	for i := range stations {
		out[i] = stationResponse(&stations[i])
	}
	httpx.JSON(w, http.StatusOK, StationsResponse{Stations: out})
}

// CreateStation adds a station.
//
//	@Summary	Create station
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		StationRequest	true	"Station"
//	@Success	201		{object}	StationEnvelope
//	@Router		/admin/stations [post]
func (h *AdminHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StationRequest](w, r)
	if !ok {
		return
	}
	st, err := h.svc.Agency.CreateStation(r.Context(), p, appsvcs.NewStation(*req))
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, StationEnvelope{Station: stationResponse(st)})
}

// UpdateStation edits a station.
//
//	@Summary	Update station
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Station ID"
//	@Param		body	body		UpdateStationRequest	true	"Fields to change"
//	@Success	200		{object}	StationEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/stations/{id} [put]
func (h *AdminHandler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateStationRequest](w, r)
	if !ok {
		return
	}
	st, err := h.svc.Agency.UpdateStation(r.Context(), p, id, models.StationPatch(*req))
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StationEnvelope{Station: stationResponse(st)})
}

// ListUnits returns the agency's units with their station names.
//
//	@Summary	List units
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UnitsResponse
//	@Router		/admin/units [get]
func (h *AdminHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	units, err := h.svc.Agency.Units(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]UnitResponse, len(units))
	for i := range units {
		out[i] = unitResponse(&units[i])
	}
	httpx.JSON(w, http.StatusOK, UnitsResponse{Units: out})
}

// CreateUnit adds a unit.
//
//	@Summary	Create unit
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		UnitRequest	true	"Unit"
//	@Success	201		{object}	UnitEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/units [post]
func (h *AdminHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UnitRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Agency.CreateUnit(r.Context(), p, appsvcs.NewUnit{
		Name:      req.Name,
		Type:      models.UnitType(req.Type),
		StationID: req.StationID,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, UnitEnvelope{Unit: unitResponse(u)})
}

// UpdateUnit edits a unit.
//
//	@Summary	Update unit
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Unit ID"
//	@Param		body	body		UpdateUnitRequest	true	"Fields to change"
//	@Success	200		{object}	UnitEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/units/{id} [put]
func (h *AdminHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateUnitRequest](w, r)
	if !ok {
		return
	}
	patch := models.UnitPatch{
		Name:      req.Name,
		StationID: req.StationID,
		VehicleID: req.VehicleID,
		Active:    req.Active,
	}
	if req.Type != nil {
		t := models.UnitType(*req.Type)
		patch.Type = &t
	}
	u, err := h.svc.Agency.UpdateUnit(r.Context(), p, id, patch)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UnitEnvelope{Unit: unitResponse(u)})
}
