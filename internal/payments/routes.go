package payments

import (
	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas/internal/rbac"
)

// MountRoutes attaches payment routes behind the access policy.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleAccounting, rbac.PermView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleAccounting, rbac.PermCreate))
		r.Post("/", h.create)
	})
}
