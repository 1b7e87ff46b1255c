package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/ledger/application/services"
	"github.com/ghuser/emssupply/services/ledger/domain/models"
)

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	SupplyID        uuid.UUID       `json:"supply_id"        validate:"required"`
	QuantityOrdered int             `json:"quantity_ordered" validate:"required,gt=0,lte=2147483647" example:"10"`
	UnitCost        decimal.Decimal `json:"unit_cost"        validate:"money" swaggertype:"string" example:"2.10"`
} // @name OrderItemRequest

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	Vendor string             `json:"vendor" validate:"max=255" example:"Bound Tree Medical"`
	Notes  string             `json:"notes"`
	Items  []OrderItemRequest `json:"items"  validate:"required,min=1,dive"`
} // @name CreateOrderRequest

// UpdateOrderRequest is the request body for PUT /orders/{id}. Omitted
// fields are left unchanged.
type UpdateOrderRequest struct {
	Vendor           *string `json:"vendor"            validate:"omitempty,max=255"`
	Notes            *string `json:"notes"`
	ExpectedDelivery *string `json:"expected_delivery" validate:"omitempty,datetime=2006-01-02" example:"2026-04-01"`
} // @name UpdateOrderRequest

// ReceiveItemRequest books goods against one order item.
type ReceiveItemRequest struct {
	OrderItemID      uuid.UUID `json:"order_item_id"     validate:"required"`
	QuantityReceived int       `json:"quantity_received" validate:"required,gt=0,lte=2147483647" example:"5"`
} // @name ReceiveItemRequest

// ReceiveOrderRequest is the request body for POST /orders/{id}/receive.
type ReceiveOrderRequest struct {
	Items        []ReceiveItemRequest `json:"items"         validate:"required,min=1,dive"`
	LocationType string               `json:"location_type" validate:"required,location_type" example:"station"`
	LocationID   uuid.UUID            `json:"location_id"   validate:"required"`
} // @name ReceiveOrderRequest

// OrderHandler serves the /orders endpoints.
type OrderHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewOrderHandler returns an OrderHandler backed by the given services.
func NewOrderHandler(svc *appsvcs.Services, log logger.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// List returns the agency's orders, newest first.
//
//	@Summary		List orders
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status	query		string	false	"Filter by status"
//	@Success		200		{object}	OrdersResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.Ledger.ListOrders(r.Context(), p, models.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = orderResponse(&orders[i].Order)
		out[i].CreatedByFirstName = orders[i].CreatedByFirstName
		out[i].CreatedByLastName = orders[i].CreatedByLastName
	}
	httpx.JSON(w, http.StatusOK, OrdersResponse{Orders: out})
}

// ReorderList totals the shortfall below par with estimated cost.
//
//	@Summary		Reorder list
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ReorderListResponse
//	@Router			/orders/reorder-list [get]
func (h *OrderHandler) ReorderList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	lines, err := h.svc.Ledger.ReorderList(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	resp := ReorderListResponse{Items: make([]ReorderLineResponse, len(lines)), TotalEstimatedCost: decimal.Zero}
	for i, l := range lines {
		resp.Items[i] = ReorderLineResponse(l)
		resp.TotalEstimatedCost = resp.TotalEstimatedCost.Add(l.EstimatedCost)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Get returns one order with its items.
//
//	@Summary		Get order
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderEnvelope
//	@Failure		404	{object}	ErrorResponse
//	@Router			/orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, http.StatusOK, h.svc.Ledger.GetOrder)
}

// Create opens a draft purchase order.
//
//	@Summary		Create order
//	@Description	Creates a draft order numbered ORD-<year>-<sequence>
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrderRequest	true	"Order lines"
//	@Success		201		{object}	OrderEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}
	cmd := appsvcs.CreateOrderCommand{Vendor: req.Vendor, Notes: req.Notes}
	for _, it := range req.Items {
		cmd.Items = append(cmd.Items, models.OrderLine{
			SupplyID:        it.SupplyID,
			QuantityOrdered: it.QuantityOrdered,
			UnitCost:        it.UnitCost,
		})
	}
	o, err := h.svc.Ledger.CreateOrder(r.Context(), p, cmd)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, OrderEnvelope{Order: orderResponse(o)})
}

// Update edits a draft order.
//
//	@Summary		Update draft order
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		UpdateOrderRequest	true	"Fields to change"
//	@Success		200		{object}	OrderEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateOrderRequest](w, r)
	if !ok {
		return
	}
	edit := models.OrderEdit{Vendor: req.Vendor, Notes: req.Notes}
	if req.ExpectedDelivery != nil {
		d, _ := time.Parse(dateLayout, *req.ExpectedDelivery) // validated above
		edit.ExpectedDelivery = &d
	}
	h.withOrder(w, r, http.StatusOK, func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Order, error) {
		return h.svc.Ledger.UpdateOrder(ctx, p, id, edit)
	})
}

// Submit moves a draft to submitted.
//
//	@Summary		Submit order
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderEnvelope
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/orders/{id}/submit [post]
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, http.StatusOK, h.svc.Ledger.SubmitOrder)
}

// Approve moves a submitted order to approved.
//
//	@Summary		Approve order
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	OrderEnvelope
//	@Failure		400	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/orders/{id}/approve [post]
func (h *OrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.withOrder(w, r, http.StatusOK, h.svc.Ledger.ApproveOrder)
}

// Receive books delivered quantities into a location.
//
//	@Summary		Receive order
//	@Description	Increments received quantities, restocks the location and settles the order status
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Order ID"
//	@Param			request	body		ReceiveOrderRequest	true	"Received lines"
//	@Success		200		{object}	OrderEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id}/receive [post]
func (h *OrderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ReceiveOrderRequest](w, r)
	if !ok {
		return
	}
	cmd := appsvcs.ReceiveCommand{
		Location: models.Location{Type: models.LocationType(req.LocationType), ID: req.LocationID},
	}
	for _, it := range req.Items {
		cmd.Items = append(cmd.Items, appsvcs.ReceiveLine{OrderItemID: it.OrderItemID, QuantityReceived: it.QuantityReceived})
	}
	h.withOrder(w, r, http.StatusOK, func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Order, error) {
		return h.svc.Ledger.ReceiveOrder(ctx, p, id, cmd)
	})
}

// Cancel cancels a draft or submitted order.
//
//	@Summary		Cancel order
//	@Tags			orders
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/orders/{id} [delete]
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.svc.Ledger.CancelOrder(r.Context(), p, id); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Order cancelled successfully"})
}

func (h *OrderHandler) withOrder(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, auth.Principal, uuid.UUID) (*models.Order, error)) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	o, err := fn(r.Context(), p, id)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, status, OrderEnvelope{Order: orderResponse(o)})
}
