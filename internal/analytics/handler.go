package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
)

// Handler serves the dashboard and report endpoints mounted under /bills.
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

// MountRoutes registers report routes; all but /stats require admin.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/stats", h.stats)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/reports", h.salesReport)
		r.Get("/top-products", h.topProducts)
		r.Get("/sales-by-time", h.salesByTime)
		r.Get("/low-stock", h.lowStock)
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	h.respond(w, r, "dashboard stats failed", stats, err)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.SalesReport(r.Context(), Period(r.URL.Query().Get("period")))
	h.respond(w, r, "sales report failed", points, err)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.TopProducts(r.Context(), Period(r.URL.Query().Get("period")))
	h.respond(w, r, "top products failed", top, err)
}

func (h *Handler) salesByTime(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.SalesByTime(r.Context())
	h.respond(w, r, "sales by time failed", buckets, err)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context(), 0)
	h.respond(w, r, "low stock failed", products, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, msg string, data any, err error) {
	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error(msg, slog.Any("error", err))
		}
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, data)
}
