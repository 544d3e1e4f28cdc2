package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas/internal/platform/httpx"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Handler exposes the effective permission table.
type Handler struct{}

// MountRoutes attaches permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.mine)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":   actor.Role,
		"grants": Grants(Role(actor.Role)),
	})
}
