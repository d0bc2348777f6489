package location

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wallspace/wallspace-api/internal/middleware"
)

// LocationRoutes returns the /locations router. extra lets other domains
// hang sub-resources off /locations/{id} without a second mount.
func (h *Handler) LocationRoutes(authMiddleware func(http.Handler) http.Handler, extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireManager())
		r.Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.Post("/{id}/spaces", h.CreateSpace)
	})

	r.Get("/{id}", h.Get)

	for _, fn := range extra {
		fn(r)
	}
	return r
}

// SpaceRoutes returns the /spaces router
func (h *Handler) SpaceRoutes(authMiddleware func(http.Handler) http.Handler, extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetSpace)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireManager())
		r.Patch("/{id}", h.UpdateSpace)
		r.Post("/{id}/image", h.UploadImage)
	})

	for _, fn := range extra {
		fn(r)
	}
	return r
}
