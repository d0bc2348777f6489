package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wallspace/wallspace-api/internal/middleware"
)

// Routes returns the /payments router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Gateway browser redirect, no bearer token
	r.Get("/success", h.Success)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(middleware.RequireArtist(), limiter).Post("/checkout", h.Checkout)
		r.With(limiter).Post("/confirm", h.Confirm)
		r.Get("/my", h.ListMine)
	})

	return r
}
