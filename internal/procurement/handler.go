package procurement

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Handler exposes distributor order and stock receipt endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountSupplierRoutes registers order routes nested under /suppliers. The
// caller is expected to guard them with the admin middleware.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Get("/distributor-summary", h.distributorSummary)
	r.Get("/{supplierId}/orders", h.listOrders)
	r.Post("/{supplierId}/orders", h.createOrder)
	r.Get("/{supplierId}/orders/summary", h.summary)
	r.Get("/{supplierId}/orders/{orderId}", h.showOrder)
	r.Put("/{supplierId}/orders/{orderId}", h.updateOrder)
	r.Delete("/{supplierId}/orders/{orderId}", h.deleteOrder)
}

// ReceiveStock handles POST /receive-stock.
func (h *Handler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	var req ReceiveStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	result, err := h.service.ReceiveStock(r.Context(), req)
	if err != nil {
		h.logFailure("receive stock failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	h.logger.Info("stock received", slog.Int64("order_id", result.ID), slog.Int64("supplier_id", req.SupplierID), slog.Float64("total", result.TotalAmount))
	httpx.Message(w, http.StatusCreated, result.Message, result)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseID(w, r, "supplierId", "Supplier")
	if !ok {
		return
	}
	orders, err := h.service.ListOrders(r.Context(), supplierID)
	if err != nil {
		h.logFailure("list orders failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseID(w, r, "supplierId", "Supplier")
	if !ok {
		return
	}
	var in OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	order, err := h.service.CreateOrder(r.Context(), supplierID, in)
	if err != nil {
		h.logFailure("create order failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, order)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseID(w, r, "supplierId", "Supplier")
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), supplierID)
	if err != nil {
		h.logFailure("order summary failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, summary)
}

func (h *Handler) showOrder(w http.ResponseWriter, r *http.Request) {
	supplierID, id, ok := parseOrderPath(w, r)
	if !ok {
		return
	}
	order, err := h.service.GetOrder(r.Context(), supplierID, id)
	if err != nil {
		h.logFailure("get order failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	supplierID, id, ok := parseOrderPath(w, r)
	if !ok {
		return
	}
	var in OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	order, err := h.service.UpdateOrder(r.Context(), supplierID, id, in)
	if err != nil {
		h.logFailure("update order failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	supplierID, id, ok := parseOrderPath(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOrder(r.Context(), supplierID, id); err != nil {
		h.logFailure("delete order failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Order deleted", nil)
}

func (h *Handler) distributorSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.DistributorSummary(r.Context())
	if err != nil {
		h.logFailure("distributor summary failed", err)
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, totals)
}

func (h *Handler) logFailure(msg string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(msg, slog.Any("error", err))
	}
}

func parseOrderPath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	supplierID, ok := parseID(w, r, "supplierId", "Supplier")
	if !ok {
		return 0, 0, false
	}
	id, ok := parseID(w, r, "orderId", "Order")
	return supplierID, id, ok
}

func parseID(w http.ResponseWriter, r *http.Request, param, resource string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, r, shared.NotFound(resource))
		return 0, false
	}
	return id, true
}
