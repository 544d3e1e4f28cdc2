package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/atlas-erp/atlas/internal/platform/httpx"
	"github.com/atlas-erp/atlas/internal/rbac"
)

// Handler serves report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches report routes behind the access policy. Exports
// are rate limited separately: they load full snapshots.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleReports, rbac.PermView))
		r.Get("/summary", h.summary)
		r.Get("/dashboard", h.dashboard)
		r.Get("/sales", h.sales)
		r.Get("/customers", h.customers)
		r.Get("/inventory", h.inventory)
		r.Get("/payments", h.payments)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(rbac.ModuleReports, rbac.PermExport))
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Get("/export/{report}", h.export)
	})
}

func parseFilter(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{Start: q.Get("start"), End: q.Get("end")}
	if v := q.Get("customer_id"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CustomerID = &parsed
		}
	}
	if v := q.Get("product_id"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.ProductID = &parsed
		}
	}
	if v := q.Get("category"); v != "" {
		f.Category = &v
	}
	if v := q.Get("method"); v != "" {
		f.PaymentMethod = &v
	}
	if v := q.Get("status"); v != "" {
		f.Status = &v
	}
	return f
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), parseFilter(r))
	if err != nil {
		h.logger.Error("summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Sales(r.Context(), parseFilter(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Customers(r.Context(), parseFilter(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Inventory(r.Context(), parseFilter(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Payments(r.Context(), parseFilter(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	filter := parseFilter(r)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report+`.csv"`)

	var err error
	switch report {
	case "summary":
		var summary *Summary
		if summary, err = h.service.Summary(r.Context(), filter); err == nil {
			err = WriteSummaryCSV(w, summary)
		}
	case "sales":
		rows, e := h.service.Sales(r.Context(), filter)
		err = e
		if err == nil {
			err = WriteSalesCSV(w, rows)
		}
	case "customers":
		rows, e := h.service.Customers(r.Context(), filter)
		err = e
		if err == nil {
			err = WriteCustomersCSV(w, rows)
		}
	case "inventory":
		rows, e := h.service.Inventory(r.Context(), filter)
		err = e
		if err == nil {
			err = WriteInventoryCSV(w, rows)
		}
	case "payments":
		rows, e := h.service.Payments(r.Context(), filter)
		err = e
		if err == nil {
			err = WritePaymentsCSV(w, rows)
		}
	default:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown report "+report)
		return
	}
	if err != nil {
		h.logger.Error("export report", slog.Any("error", err), slog.String("report", report))
		httpx.RespondError(w, err)
	}
}
