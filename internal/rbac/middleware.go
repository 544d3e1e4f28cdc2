package rbac

import (
	"log/slog"
	"net/http"

	"github.com/atlas-erp/atlas/internal/platform/httpx"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Middleware wires authorization checks for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current actor's role grants the permission on the
// module. Requests without an authenticated actor are rejected outright.
func (m Middleware) Require(module Module, perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}
			if !Can(Role(actor.Role), module, perm) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("actor_id", actor.ID),
						slog.String("role", actor.Role),
						slog.String("module", string(module)),
						slog.String("permission", string(perm)))
				}
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
