package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/ledger/application/services"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
)

// UsageItemRequest is one supply consumed in a usage batch.
type UsageItemRequest struct {
	SupplyID uuid.UUID `json:"supply_id" validate:"required"`
	Quantity int       `json:"quantity"  validate:"required,gt=0,lte=2147483647" example:"2"`
} // @name UsageItemRequest

// RecordUsageRequest is the request body for POST /inventory/usage.
type RecordUsageRequest struct {
	Items          []UsageItemRequest `json:"items"           validate:"required,min=1,dive"`
	LocationType   string             `json:"location_type"   validate:"required,location_type" example:"unit"`
	LocationID     uuid.UUID          `json:"location_id"     validate:"required"`
	UsageType      string             `json:"usage_type"      validate:"omitempty,usage_type" example:"patient_care"`
	IncidentNumber string             `json:"incident_number" validate:"max=100" example:"INC-2026-0142"`
	Notes          string             `json:"notes"`
} // @name RecordUsageRequest

// AdjustInventoryRequest is the request body for POST /inventory/adjust.
type AdjustInventoryRequest struct {
	SupplyID     uuid.UUID `json:"supply_id"     validate:"required"`
	LocationType string    `json:"location_type" validate:"required,location_type" example:"station"`
	LocationID   uuid.UUID `json:"location_id"   validate:"required"`
	Quantity     *int      `json:"quantity"      validate:"required,gte=0,lte=2147483647" example:"24"`
	Notes        string    `json:"notes"         example:"Monthly count"`
} // @name AdjustInventoryRequest

// SeedInventoryRequest is the request body for POST /inventory/seed.
type SeedInventoryRequest struct {
	SupplyID       uuid.UUID `json:"supply_id"       validate:"required"`
	LocationType   string    `json:"location_type"   validate:"required,location_type" example:"unit"`
	LocationID     uuid.UUID `json:"location_id"     validate:"required"`
	Quantity       int       `json:"quantity"        validate:"gte=0,lte=2147483647" example:"10"`
	ParLevel       int       `json:"par_level"       validate:"gte=0,lte=2147483647" example:"12"`
	ExpirationDate string    `json:"expiration_date" validate:"omitempty,datetime=2006-01-02" example:"2027-01-31"`
	LotNumber      string    `json:"lot_number"      validate:"max=100"`
	Notes          string    `json:"notes"`
} // @name SeedInventoryRequest

// InventoryHandler serves the /inventory endpoints.
type InventoryHandler struct {
	svc *appsvcs.Services
	log logger.Logger
	now func() time.Time
}

// NewInventoryHandler returns an InventoryHandler backed by the given services.
func NewInventoryHandler(svc *appsvcs.Services, log logger.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, log: log, now: time.Now}
}

// Summary lists per-supply totals across every location.
//
//	@Summary		Inventory summary
//	@Description	Totals quantity and par level per supply across all units and stations
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	InventorySummaryResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/inventory/all [get]
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	totals, err := h.svc.Ledger.InventorySummary(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]SupplyTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = SupplyTotalResponse(t)
	}
	httpx.JSON(w, http.StatusOK, InventorySummaryResponse{Inventory: out})
}

// Unit lists the inventory carried on one unit.
//
//	@Summary		Unit inventory
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Unit ID"
//	@Success		200	{object}	UnitInventoryResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/inventory/units/{id} [get]
func (h *InventoryHandler) Unit(w http.ResponseWriter, r *http.Request) {
	info, rows, ok := h.location(w, r, models.LocationUnit)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, UnitInventoryResponse{Unit: info, Inventory: rows})
}

// Station lists the inventory stocked at one station.
//
//	@Summary		Station inventory
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Station ID"
//	@Success		200	{object}	StationInventoryResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/inventory/stations/{id} [get]
func (h *InventoryHandler) Station(w http.ResponseWriter, r *http.Request) {
	info, rows, ok := h.location(w, r, models.LocationStation)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, StationInventoryResponse{Station: info, Inventory: rows})
}

func (h *InventoryHandler) location(w http.ResponseWriter, r *http.Request, typ models.LocationType) (LocationResponse, []InventoryItemResponse, bool) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return LocationResponse{}, nil, false
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return LocationResponse{}, nil, false
	}
	info, views, err := h.svc.Ledger.LocationInventory(r.Context(), p, models.Location{Type: typ, ID: id})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return LocationResponse{}, nil, false
	}
	loc := LocationResponse{ID: info.ID, Name: info.Name, Active: info.Active}
	return loc, viewResponses(views, h.now(), nil), true
}

// Expiring lists tracked lots expiring within the given number of days.
//
//	@Summary		Expiring inventory
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Param			days	query		int	false	"Look-ahead window in days"	default(90)
//	@Success		200		{object}	ExpiringResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/inventory/expiring [get]
func (h *InventoryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	days, ok := httpx.QueryInt(w, r, "days", 90)
	if !ok {
		return
	}
	views, err := h.svc.Ledger.Expiring(r.Context(), p, days)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	today := h.now()
	httpx.JSON(w, http.StatusOK, ExpiringResponse{
		Expiring: viewResponses(views, today, func(resp *InventoryItemResponse, v models.InventoryView) {
			d := models.DaysUntil(*v.ExpirationDate, today)
			resp.DaysUntilExpiration = &d
		}),
	})
}

// BelowPar lists records whose quantity is under par.
//
//	@Summary		Below-par inventory
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	BelowParResponse
//	@Router			/inventory/below-par [get]
func (h *InventoryHandler) BelowPar(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	views, err := h.svc.Ledger.BelowPar(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BelowParResponse{
		BelowPar: viewResponses(views, h.now(), func(resp *InventoryItemResponse, v models.InventoryView) {
			d := v.ParLevel - v.Quantity
			resp.Deficit = &d
		}),
	})
}

// Transactions lists the stock journal, newest first.
//
//	@Summary		Inventory transactions
//	@Tags			inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Param			supply_id		query		string	false	"Supply ID"
//	@Param			location_type	query		string	false	"unit or station"
//	@Param			location_id		query		string	false	"Location ID"
//	@Param			limit			query		int		false	"Maximum rows"	default(100)
//	@Success		200				{object}	TransactionsResponse
//	@Failure		400				{object}	ErrorResponse
//	@Router			/inventory/transactions [get]
func (h *InventoryHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	var f models.TransactionFilter
	if f.SupplyID, ok = httpx.QueryUUID(w, r, "supply_id"); !ok {
		return
	}
	locID, ok := httpx.QueryUUID(w, r, "location_id")
	if !ok {
		return
	}
	if locType := r.URL.Query().Get("location_type"); locType != "" || locID != uuid.Nil {
		f.Location = &models.Location{Type: models.LocationType(locType), ID: locID}
	}
	if f.Limit, ok = httpx.QueryInt(w, r, "limit", 0); !ok {
		return
	}

	rows, err := h.svc.Ledger.Transactions(r.Context(), p, f)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]TransactionResponse, len(rows))
	for i, t := range rows {
		out[i] = transactionResponse(t)
	}
	httpx.JSON(w, http.StatusOK, TransactionsResponse{Transactions: out})
}

// RecordUsage decrements stock for every item in one all-or-nothing batch.
//
//	@Summary		Record usage
//	@Description	Decrements stock at a location and journals each item; fails as a whole if any item is short
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		RecordUsageRequest	true	"Usage batch"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/inventory/usage [post]
func (h *InventoryHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecordUsageRequest](w, r)
	if !ok {
		return
	}

	cmd := appsvcs.UsageCommand{
		Location:       models.Location{Type: models.LocationType(req.LocationType), ID: req.LocationID},
		UsageType:      models.UsageType(req.UsageType),
		IncidentNumber: req.IncidentNumber,
		Notes:          req.Notes,
	}
	for _, it := range req.Items {
		cmd.Items = append(cmd.Items, appsvcs.UsageItem{SupplyID: it.SupplyID, Quantity: it.Quantity})
	}
	if err := h.svc.Ledger.RecordUsage(r.Context(), p, cmd); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Usage recorded successfully"})
}

// Adjust sets a record to a counted quantity.
//
//	@Summary		Adjust inventory
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		AdjustInventoryRequest	true	"Counted quantity"
//	@Success		200		{object}	InventoryRecordResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/inventory/adjust [post]
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AdjustInventoryRequest](w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Ledger.AdjustInventory(r.Context(), p, appsvcs.AdjustCommand{
		SupplyID: req.SupplyID,
		Location: models.Location{Type: models.LocationType(req.LocationType), ID: req.LocationID},
		Quantity: *req.Quantity,
		Notes:    req.Notes,
	})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, InventoryRecordResponse{
		Message:   "Inventory adjusted successfully",
		Inventory: recordResponse(*rec, h.now()),
	})
}

// Seed creates the first record of a supply at a location.
//
//	@Summary		Seed inventory
//	@Description	Creates an inventory record with an initial journal entry; 409 if one already exists
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SeedInventoryRequest	true	"Initial stock"
//	@Success		201		{object}	InventoryRecordResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/inventory/seed [post]
func (h *InventoryHandler) Seed(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SeedInventoryRequest](w, r)
	if !ok {
		return
	}

	cmd := appsvcs.SeedCommand{
		SupplyID:  req.SupplyID,
		Location:  models.Location{Type: models.LocationType(req.LocationType), ID: req.LocationID},
		Quantity:  req.Quantity,
		ParLevel:  req.ParLevel,
		LotNumber: req.LotNumber,
		Notes:     req.Notes,
	}
	if req.ExpirationDate != "" {
		d, _ := time.Parse(dateLayout, req.ExpirationDate) // validated above
		cmd.ExpirationDate = &d
	}

	rec, err := h.svc.Ledger.SeedInventory(r.Context(), p, cmd)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, InventoryRecordResponse{
		Message:   "Inventory created successfully",
		Inventory: recordResponse(*rec, h.now()),
	})
}
