package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mnb-billing/mnb-pos/internal/analytics"
	"github.com/mnb-billing/mnb-pos/internal/auth"
	"github.com/mnb-billing/mnb-pos/internal/billing"
	"github.com/mnb-billing/mnb-pos/internal/masterdata/products"
	"github.com/mnb-billing/mnb-pos/internal/masterdata/suppliers"
	"github.com/mnb-billing/mnb-pos/internal/observability"
	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/procurement"
	"github.com/mnb-billing/mnb-pos/jobs"
)

// Pinger reports dependency health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Auth               *auth.Middleware
	AuthHandler        *auth.Handler
	ProductHandler     *products.Handler
	SupplierHandler    *suppliers.Handler
	BillingHandler     *billing.Handler
	ProcurementHandler *procurement.Handler
	AnalyticsHandler   *analytics.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
	Database           Pinger
}

// NewRouter constructs the chi.Router serving the /api/v1 surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Route not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	r.Get("/health", health(params.Database))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	admin := params.Auth.RequireRole(auth.RoleAdmin)
	loginLimit := 0
	if params.Config != nil {
		loginLimit = params.Config.LoginRatePerMinute
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(LoginRateLimit(loginLimit))
			params.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.Auth.Authenticate)

			r.Route("/products", func(r chi.Router) {
				params.ProductHandler.MountRoutes(r, admin)
			})
			r.Route("/bills", func(r chi.Router) {
				params.AnalyticsHandler.MountRoutes(r, admin)
				params.BillingHandler.MountRoutes(r, admin)
			})
			r.Route("/suppliers", func(r chi.Router) {
				params.SupplierHandler.MountRoutes(r, admin)
				r.Group(func(r chi.Router) {
					r.Use(admin)
					params.ProcurementHandler.MountSupplierRoutes(r)
				})
			})
			r.With(admin).Post("/receive-stock", params.ProcurementHandler.ReceiveStock)
			if params.JobHandler != nil {
				r.With(admin).Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				httpx.OK(w, http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		httpx.OK(w, http.StatusOK, status)
	}
}
