package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/atlas-erp/atlas/internal/shared"
	"github.com/atlas-erp/atlas/internal/users"
)

type sessionContextKey struct{}

func contextWithSession(ctx context.Context, sess *shared.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

func sessionFromContext(ctx context.Context) *shared.Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*shared.Session)
	return sess
}

// Middleware loads the redis session and resolves the acting user into the
// request context. Requests without a valid session pass through anonymous;
// rbac.Middleware rejects them where authentication is required.
type Middleware struct {
	Sessions *shared.SessionManager
	Users    users.Repository
	Logger   *slog.Logger
}

// LoadActor is the session/actor resolution middleware.
func (m Middleware) LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess, err := m.Sessions.Load(ctx, r)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("load session", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		ctx = contextWithSession(ctx, sess)

		if id := sess.UserID(); id != 0 {
			user, err := m.Users.Get(ctx, id)
			if err == nil && user.IsActive {
				ctx = shared.ContextWithActor(ctx, shared.Actor{
					ID:    user.ID,
					Name:  user.Name,
					Email: user.Email,
					Role:  string(user.Role),
				})
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
