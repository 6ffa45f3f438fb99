package suppliers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list suppliers failed", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, suppliers)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSupplierID(w, r)
	if !ok {
		return
	}
	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, supplier)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in SupplierInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	supplier, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logFailure("create supplier failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, supplier)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSupplierID(w, r)
	if !ok {
		return
	}
	var in SupplierInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	supplier, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logFailure("update supplier failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, supplier)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSupplierID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logFailure("delete supplier failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Supplier deleted", nil)
}

func (h *Handler) logFailure(msg string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(msg, slog.Any("error", err))
	}
}

func parseSupplierID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "supplierId"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, r, shared.NewValidationError("Invalid supplier ID"))
		return 0, false
	}
	return id, true
}
