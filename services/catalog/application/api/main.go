package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/emssupply/services/catalog/application/services"
)

// CatalogRoutes registers the /supplies endpoints.
func CatalogRoutes(r chi.Router, a *app.Application) {
	Routes(r, appsvcs.New(a), a.Logger)
}

func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewSupplyHandler(svcs, log)
	managers := auth.RequireRole(auth.RoleAdmin, auth.RoleSupervisor)

	r.Route("/supplies", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.With(managers).Post("/categories", h.CreateCategory)
		r.With(managers).Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.With(managers).Put("/{id}", h.Update)
		r.With(managers).Delete("/{id}", h.Deactivate)
	})
}
