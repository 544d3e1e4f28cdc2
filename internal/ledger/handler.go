package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-erp/atlas/internal/platform/httpx"
	"github.com/atlas-erp/atlas/internal/rbac"
)

// Handler serves the ledger read side.
type Handler struct {
	logger *slog.Logger
	reader *Reader
	rbac   rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, reader *Reader, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, reader: reader, rbac: mw}
}

// MountRoutes attaches ledger routes behind the accounting policy.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleAccounting, rbac.PermView))
		r.Get("/customers/{id}/transactions", h.transactions)
		r.Get("/customers/{id}/statement", h.statement)
		r.Get("/customers/{id}/verify", h.verifyCustomer)
		r.Get("/verify", h.verifyAll)
	})
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	txns, err := h.reader.Transactions(r.Context(), id)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err), slog.Int64("customer_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	stmt, err := h.reader.Statement(r.Context(), id, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.logger.Error("statement", slog.Any("error", err), slog.Int64("customer_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) verifyCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	drift, err := h.reader.VerifyCustomer(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"consistent": drift == nil, "drift": drift})
}

func (h *Handler) verifyAll(w http.ResponseWriter, r *http.Request) {
	drifted, err := h.reader.VerifyAll(r.Context())
	if err != nil {
		h.logger.Error("verify ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"consistent": len(drifted) == 0, "drifted": drifted})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return 0, false
	}
	return id, true
}
