package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wallspace/wallspace-api/internal/middleware"
)

// Routes returns the /bookings router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.With(middleware.RequireArtist(), limiter).Post("/", h.Create)
	r.Get("/my", h.ListMine)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Transition)
	r.Get("/{id}/history", h.History)

	return r
}

// SpaceRoutes registers the booking endpoints that live under /spaces
func (h *Handler) SpaceRoutes(r chi.Router) {
	r.Get("/{id}/availability", h.Availability)
}

// LocationRoutes registers the booking endpoints that live under /locations
func (h *Handler) LocationRoutes(authMiddleware func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.With(authMiddleware).Get("/{id}/bookings", h.ListForLocation)
	}
}
