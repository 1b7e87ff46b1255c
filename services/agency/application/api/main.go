package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/agency/application/handlers"
	appsvcs "github.com/ghuser/emssupply/services/agency/application/services"
)

// AgencyRoutes registers the /admin agency, station and unit endpoints.
func AgencyRoutes(r chi.Router, a *app.Application) {
	Routes(r, appsvcs.New(a), a.Logger)
}

func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewAdminHandler(svcs, log)
	managers := auth.RequireRole(auth.RoleAdmin, auth.RoleSupervisor)

	r.Route("/admin", func(r chi.Router) {
		r.With(auth.RequireRole(auth.RoleAdmin)).Get("/agency", h.GetAgency)
		r.With(auth.RequireRole(auth.RoleAdmin)).Put("/agency", h.UpdateAgency)

		r.Group(func(r chi.Router) {
			r.Use(managers)
			r.Get("/stations", h.ListStations)
			r.Post("/stations", h.CreateStation)
			r.Put("/stations/{id}", h.UpdateStation)
			r.Get("/units", h.ListUnits)
			r.Post("/units", h.CreateUnit)
			r.Put("/units/{id}", h.UpdateUnit)
		})
	})
}
