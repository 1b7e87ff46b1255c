package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/emssupply/pkg/app"
	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/ledger/application/handlers"
	appsvcs "github.com/ghuser/emssupply/services/ledger/application/services"
)

// LedgerRoutes registers inventory and order endpoints on the provided chi
// router. The router must already authenticate requests.
func LedgerRoutes(r chi.Router, a *app.Application) {
	Routes(r, appsvcs.New(a), a.Logger)
}

// Routes registers the ledger endpoints backed by svcs.
func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	inv := handlers.NewInventoryHandler(svcs, log)
	orders := handlers.NewOrderHandler(svcs, log)
	managers := auth.RequireRole(auth.RoleAdmin, auth.RoleSupervisor)

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/all", inv.Summary)
		r.Get("/units/{id}", inv.Unit)
		r.Get("/stations/{id}", inv.Station)
		r.Get("/expiring", inv.Expiring)
		r.Get("/below-par", inv.BelowPar)
		r.Get("/transactions", inv.Transactions)
		r.Post("/usage", inv.RecordUsage)
		r.With(managers).Post("/adjust", inv.Adjust)
		r.With(managers).Post("/seed", inv.Seed)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(managers)
		r.Get("/", orders.List)
		r.Get("/reorder-list", orders.ReorderList)
		r.Post("/", orders.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", orders.Get)
			r.Put("/", orders.Update)
			r.Delete("/", orders.Cancel)
			r.Post("/submit", orders.Submit)
			r.Post("/approve", orders.Approve)
			r.Post("/receive", orders.Receive)
		})
	})
}
