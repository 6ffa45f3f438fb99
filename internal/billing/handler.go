package billing

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Handler exposes billing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a billing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers bill routes on a router already guarded by authentication.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/", h.create)
	r.Get("/", h.recent)
	r.Get("/history", h.history)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/customers", h.customers)
		r.Get("/customers/{phone}", h.customerHistory)
	})
	r.Get("/{id}", h.show)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, shared.ErrUnauthorized)
		return
	}
	var req CreateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	created, err := h.service.CreateBill(r.Context(), req, principal.UserID)
	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("create bill failed", slog.Int64("cashier_id", principal.UserID), slog.Any("error", err))
		} else {
			h.logger.Info("bill rejected", slog.Int64("cashier_id", principal.UserID), slog.String("reason", err.Error()))
		}
		httpx.RespondError(w, r, err)
		return
	}
	h.logger.Info("bill created", slog.Int64("bill_id", created.ID), slog.String("bill_number", created.BillNumber))
	httpx.OK(w, http.StatusCreated, created)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.Recent(r.Context())
	if err != nil {
		h.logger.Error("recent bills failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, bills)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, r, shared.NewValidationError("Invalid bill ID"))
		return
	}
	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, bill)
}

type historyResponse struct {
	Bills      []Bill            `json:"bills"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := HistoryFilter{Phone: q.Get("phone"), BillNumber: q.Get("bill_number")}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	var err error
	if filter.From, err = parseDay(q.Get("from"), "from"); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if filter.To, err = parseDay(q.Get("to"), "to"); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if filter.To != nil {
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	bills, page, err := h.service.History(r.Context(), filter)
	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("bill history failed", slog.Any("error", err))
		}
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, historyResponse{Bills: bills, Pagination: page})
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Customers(r.Context())
	if err != nil {
		h.logger.Error("list customers failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, customers)
}

func (h *Handler) customerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.CustomerHistory(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		h.logger.Error("customer history failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, history)
}

func parseDay(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, shared.NewValidationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return &day, nil
}
