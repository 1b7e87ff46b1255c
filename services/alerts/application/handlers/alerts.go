package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	appsvcs "github.com/ghuser/emssupply/services/alerts/application/services"
	"github.com/ghuser/emssupply/services/alerts/domain/models"
)

// AlertResponse is one inbox entry.
type AlertResponse struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"     example:"below_par"`
	Severity     string     `json:"severity" example:"warning"`
	Title        string     `json:"title"    example:"Below Par: Gauze 4x4"`
	Message      string     `json:"message"  example:"Gauze 4x4 is below par level (3/10)"`
	SupplyID     *uuid.UUID `json:"supply_id"`
	SupplyName   string     `json:"supply_name,omitempty"`
	SKU          string     `json:"sku,omitempty"`
	LocationType string     `json:"location_type,omitempty" example:"unit"`
	LocationID   *uuid.UUID `json:"location_id"`
	IsRead       bool       `json:"is_read"`
	IsDismissed  bool       `json:"is_dismissed"`
	CreatedAt    time.Time  `json:"created_at"`
} // @name AlertResponse

// AlertsResponse wraps GET /alerts.
type AlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
} // @name AlertsResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"alert not found"`
} // @name AlertErrorResponse

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message" example:"Alert dismissed"`
} // @name AlertMessageResponse

// ScanResponse reports an on-demand scan.
type ScanResponse struct {
	Message string `json:"message" example:"Alert scan completed"`
	Created int    `json:"created" example:"3"`
} // @name ScanResponse

// AlertHandler serves /alerts and the admin scan trigger.
type AlertHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewAlertHandler(svc *appsvcs.Services, log logger.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, log: log}
}

// List returns the caller's non-dismissed alerts, newest first.
//
//	@Summary	List alerts
//	@Tags		alerts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		is_read		query		bool	false	"Filter by read flag"
//	@Param		severity	query		string	false	"info, warning or critical"
//	@Param		type		query		string	false	"Alert type"
//	@Success	200			{object}	AlertsResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/alerts [get]
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	isRead, ok := httpx.QueryBool(w, r, "is_read")
	if !ok {
		return
	}
	q := r.URL.Query()
	f := models.Filter{
		IsRead:   isRead,
		Severity: models.Severity(q.Get("severity")),
		Type:     models.Type(q.Get("type")),
	}

	alerts, err := h.svc.Alerts.List(r.Context(), p, f)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{
			ID:           a.ID,
			Type:         string(a.Type),
			Severity:     string(a.Severity),
			Title:        a.Title,
			Message:      a.Message,
			SupplyID:     a.SupplyID,
			SupplyName:   a.SupplyName,
			SKU:          a.SKU,
			LocationType: a.LocationType,
			LocationID:   a.LocationID,
			IsRead:       a.IsRead,
			IsDismissed:  a.IsDismissed,
			CreatedAt:    a.CreatedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, AlertsResponse{Alerts: out})
}

// MarkRead flags one alert as read.
//
//	@Summary	Mark alert read
//	@Tags		alerts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Alert ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/alerts/{id}/read [put]
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.svc.Alerts.MarkRead, "Alert marked as read")
}

// Dismiss hides one alert from the inbox.
//
//	@Summary	Dismiss alert
//	@Tags		alerts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Alert ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/alerts/{id}/dismiss [put]
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.svc.Alerts.Dismiss, "Alert dismissed")
}

func (h *AlertHandler) update(w http.ResponseWriter, r *http.Request, fn func(context.Context, auth.Principal, uuid.UUID) error, msg string) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := fn(r.Context(), p, id); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// MarkAllRead flags every non-dismissed alert of the caller's agency as read.
//
//	@Summary	Mark all alerts read
//	@Tags		alerts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	MessageResponse
//	@Router		/alerts/read-all [put]
func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.Alerts.MarkAllRead(r.Context(), p); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "All alerts marked as read"})
}

// Scan runs the alert generator for the caller's agency immediately.
//
//	@Summary	Run alert scan
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ScanResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/alerts/scan [post]
func (h *AlertHandler) Scan(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	created, err := h.svc.Generator.ScanAgencyByID(r.Context(), p.AgencyID)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	h.log.InfoContext(r.Context(), "manual alert scan", "agency_id", p.AgencyID, "created", created)
	httpx.JSON(w, http.StatusOK, ScanResponse{Message: "Alert scan completed", Created: created})
}
