package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/httpx"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Handler wires HTTP routes for authentication.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware *Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, middleware *Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, middleware: middleware}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.With(h.middleware.Authenticate).Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Warn("login rejected", slog.String("username", req.Username))
		}
		httpx.RespondError(w, r, err)
		return
	}
	h.logger.Info("user logged in", slog.Int64("user_id", result.User.ID), slog.String("role", result.User.Role))
	httpx.Message(w, http.StatusOK, "Login successful", result)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, shared.ErrUnauthorized)
		return
	}
	user, err := h.service.CurrentUser(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}
