package suppliers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers supplier routes. Path ids use {supplierId} so nested
// order routes can share the segment.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{supplierId}", h.Show)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.Create)
		r.Put("/{supplierId}", h.Update)
		r.Delete("/{supplierId}", h.Delete)
	})
}
