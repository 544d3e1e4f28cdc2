package invoices

import (
	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas/internal/rbac"
)

// MountRoutes attaches invoice routes behind the access policy.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleSales, rbac.PermView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
		r.Get("/by-number/{number}", h.showByNumber)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleSales, rbac.PermCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleSales, rbac.PermEdit))
		r.Put("/{id}", h.update)
		r.Patch("/{id}/status", h.updateStatus)
	})
}
