package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/logger"
	"github.com/ghuser/emssupply/services/identity/application/handlers"
	appsvcs "github.com/ghuser/emssupply/services/identity/application/services"
)

// AuthRoutes registers the public /auth endpoints.
func AuthRoutes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewAuthHandler(svcs, log)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})
}

// UserRoutes registers /users. The router must already authenticate requests.
func UserRoutes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewUserHandler(svcs, log)
	admin := auth.RequireRole(auth.RoleAdmin)

	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateMe)
		r.With(admin).Get("/", h.List)
		r.With(admin).Post("/", h.Create)
		r.With(auth.RequireRole(auth.RoleAdmin, auth.RoleSupervisor)).Get("/{id}", h.Get)
		r.With(admin).Put("/{id}", h.Update)
		r.With(admin).Delete("/{id}", h.Deactivate)
	})
}
