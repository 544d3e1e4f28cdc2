package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-erp/atlas/internal/auth"
	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/rbac"
	"github.com/atlas-erp/atlas/internal/reports"
	"github.com/atlas-erp/atlas/internal/users"
	"github.com/atlas-erp/atlas/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthMiddleware  auth.Middleware
	RBACMiddleware  rbac.Middleware
	AuthHandler     *auth.Handler
	CustomerHandler *customers.Handler
	ProductHandler  *products.Handler
	InvoiceHandler  *invoices.Handler
	PaymentHandler  *payments.Handler
	LedgerHandler   *ledger.Handler
	ReportHandler   *reports.Handler
	UserHandler     *users.Handler
	RBACHandler     *rbac.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Atlas defaults. Everything
// except /healthz and /auth/login runs behind the session-resolved actor.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)
	r.Use(params.AuthMiddleware.LoadActor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/customers", func(r chi.Router) {
		params.CustomerHandler.MountRoutes(r, params.RBACMiddleware)
	})
	r.Route("/products", params.ProductHandler.MountRoutes)
	r.Route("/invoices", func(r chi.Router) {
		params.InvoiceHandler.MountRoutes(r, params.RBACMiddleware)
	})
	r.Route("/payments", func(r chi.Router) {
		params.PaymentHandler.MountRoutes(r, params.RBACMiddleware)
	})
	r.Route("/ledger", params.LedgerHandler.MountRoutes)
	r.Route("/reports", func(r chi.Router) {
		params.ReportHandler.MountRoutes(r, params.RBACMiddleware)
	})
	r.Route("/users", params.UserHandler.MountRoutes)
	r.Route("/permissions", params.RBACHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
