package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/catalog/application/services"
	"github.com/ghuser/emssupply/services/catalog/domain/models"
)

// SupplyRequest is the request body for POST /supplies.
type SupplyRequest struct {
	CategoryID       *uuid.UUID       `json:"category_id"`
	Name             string           `json:"name"              validate:"required,max=255" example:"Nasal Cannula, Adult"`
	Description      string           `json:"description"`
	SKU              string           `json:"sku"               validate:"max=100"`
	Manufacturer     string           `json:"manufacturer"      validate:"max=255"`
	UnitOfMeasure    string           `json:"unit_of_measure"   validate:"max=50" example:"each"`
	UnitCost         *decimal.Decimal `json:"unit_cost"         validate:"omitempty,money" swaggertype:"string" example:"1.25"`
	DefaultParLevel  int              `json:"default_par_level" validate:"gte=0"`
	TracksExpiration bool             `json:"tracks_expiration"`
} // @name SupplyRequest

// UpdateSupplyRequest is the request body for PUT /supplies/{id}. A nil UUID
// category_id clears the category.
type UpdateSupplyRequest struct {
	CategoryID       *uuid.UUID       `json:"category_id"`
	Name             *string          `json:"name"              validate:"omitempty,min=1,max=255"`
	Description      *string          `json:"description"`
	SKU              *string          `json:"sku"               validate:"omitempty,max=100"`
	Manufacturer     *string          `json:"manufacturer"      validate:"omitempty,max=255"`
	UnitOfMeasure    *string          `json:"unit_of_measure"   validate:"omitempty,min=1,max=50"`
	UnitCost         *decimal.Decimal `json:"unit_cost"         validate:"omitempty,money" swaggertype:"string"`
	DefaultParLevel  *int             `json:"default_par_level" validate:"omitempty,gte=0"`
	TracksExpiration *bool            `json:"tracks_expiration"`
	Active           *bool            `json:"active"`
} // @name UpdateSupplyRequest

// CategoryRequest is the request body for POST /supplies/categories.
type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=255" example:"Airway"`
	Description string `json:"description"`
} // @name CategoryRequest

// SupplyHandler serves the /supplies catalog endpoints.
type SupplyHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewSupplyHandler(svc *appsvcs.Services, log logger.Logger) *SupplyHandler {
	return &SupplyHandler{svc: svc, log: log}
}

// activeFilter reads ?active=. Absent means active only and "all" disables
// the filter.
func activeFilter(w http.ResponseWriter, r *http.Request) (*bool, bool) {
	raw := r.URL.Query().Get("active")
	switch raw {
	case "":
		t := true
		return &t, true
	case "all":
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid active")
		return nil, false
	}
	return &b, true
}

// List returns the agency's supplies.
//
//	@Summary	List supplies
//	@Tags		supplies
//	@Produce	json
//	@Security	BearerAuth
//	@Param		category	query		string	false	"Category ID"
//	@Param		search		query		string	false	"Matches name, SKU or manufacturer"
//	@Param		active		query		string	false	"true (default), false or all"
//	@Success	200			{object}	SuppliesResponse
//	@Router		/supplies [get]
func (h *SupplyHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	categoryID, ok := httpx.QueryUUID(w, r, "category")
	if !ok {
		return
	}
	active, ok := activeFilter(w, r)
	if !ok {
		return
	}
	supplies, err := h.svc.Catalog.Supplies(r.Context(), p, models.Filter{
		CategoryID: categoryID,
		Search:     r.URL.Query().Get("search"),
		Active:     active,
	})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := SuppliesResponse{Supplies: make([]SupplyResponse, len(supplies))}
	for i := range supplies {
		out.Supplies[i] = supplyResponse(&supplies[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one supply.
//
//	@Summary	Get supply
//	@Tags		supplies
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Supply ID"
//	@Success	200	{object}	SupplyEnvelope
//	@Failure	404	{object}	ErrorResponse
//	@Router		/supplies/{id} [get]
func (h *SupplyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	s, err := h.svc.Catalog.Supply(r.Context(), p, id)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SupplyEnvelope{Supply: supplyResponse(s)})
}

// Create adds a supply to the catalog.
//
//	@Summary	Create supply
//	@Tags		supplies
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		SupplyRequest	true	"Supply"
//	@Success	201		{object}	SupplyEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Router		/supplies [post]
func (h *SupplyHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SupplyRequest](w, r)
	if !ok {
		return
	}
	in := models.Supply{
		CategoryID:       req.CategoryID,
		Name:             req.Name,
		Description:      req.Description,
		SKU:              req.SKU,
		Manufacturer:     req.Manufacturer,
		UnitOfMeasure:    req.UnitOfMeasure,
		DefaultParLevel:  req.DefaultParLevel,
		TracksExpiration: req.TracksExpiration,
	}
	if req.UnitCost != nil {
		in.UnitCost = *req.UnitCost
	}
	s, err := h.svc.Catalog.CreateSupply(r.Context(), p, in)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, SupplyEnvelope{Supply: supplyResponse(s)})
}

// Update edits a supply.
//
//	@Summary	Update supply
//	@Tags		supplies
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Supply ID"
//	@Param		body	body		UpdateSupplyRequest	true	"Fields to change"
//	@Success	200		{object}	SupplyEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Router		/supplies/{id} [put]
func (h *SupplyHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateSupplyRequest](w, r)
	if !ok {
		return
	}
	s, err := h.svc.Catalog.UpdateSupply(r.Context(), p, id, models.SupplyPatch(*req))
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SupplyEnvelope{Supply: supplyResponse(s)})
}

// Deactivate hides a supply from the active catalog.
//
//	@Summary	Deactivate supply
//	@Tags		supplies
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Supply ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/supplies/{id} [delete]
func (h *SupplyHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeactivateSupply(r.Context(), p, id); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Supply deactivated successfully"})
}

// Categories lists active supply categories.
//
//	@Summary	List categories
//	@Tags		supplies
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CategoriesResponse
//	@Router		/supplies/categories [get]
func (h *SupplyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	cats, err := h.svc.Catalog.Categories(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := CategoriesResponse{Categories: make([]CategoryResponse, len(cats))}
	for i := range cats {
		out.Categories[i] = categoryResponse(&cats[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// CreateCategory adds a supply category.
//
//	@Summary	Create category
//	@Tags		supplies
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		CategoryRequest	true	"Category"
//	@Success	201		{object}	CategoryEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Router		/supplies/categories [post]
func (h *SupplyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CategoryRequest](w, r)
	if !ok {
		return
	}
	c, err := h.svc.Catalog.CreateCategory(r.Context(), p, req.Name, req.Description)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CategoryEnvelope{Category: categoryResponse(c)})
}
