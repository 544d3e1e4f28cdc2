package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas/internal/rbac"
)

// MountRoutes attaches customer routes behind the access policy.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleCustomers, rbac.PermView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleCustomers, rbac.PermCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleCustomers, rbac.PermEdit))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleCustomers, rbac.PermDelete))
		r.Delete("/{id}", h.delete)
	})
}
