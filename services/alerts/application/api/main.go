package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/alerts/application/handlers"
	appsvcs "github.com/ghuser/emssupply/services/alerts/application/services"
)

// AlertRoutes registers the alert inbox and the admin scan trigger.
func AlertRoutes(r chi.Router, a *app.Application) {
	Routes(r, appsvcs.New(a), a.Logger)
}

func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewAlertHandler(svcs, log)

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Put("/read-all", h.MarkAllRead)
		r.Put("/{id}/read", h.MarkRead)
		r.Put("/{id}/dismiss", h.Dismiss)
	})
	r.With(auth.RequireRole(auth.RoleAdmin)).Post("/admin/alerts/scan", h.Scan)
}
