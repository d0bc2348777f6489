package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wallspace/wallspace-api/internal/domain/auth"
	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/domain/notification"
	"github.com/wallspace/wallspace-api/internal/domain/payment"
	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/metrics"
	pkgresponse "github.com/wallspace/wallspace-api/internal/pkg/response"
)

// handlers bundles everything the HTTP router mounts
type handlers struct {
	auth         *auth.Handler
	location     *location.Handler
	booking      *booking.Handler
	payment      *payment.Handler
	notification *notification.Handler
	ws           http.Handler
}

func newRouter(allowedOrigins []string, authMiddleware, limiter func(http.Handler) http.Handler, h handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(allowedOrigins))
	r.Use(metrics.InstrumentHandler)

	// WebSocket authenticates with ?token= since browsers cannot set headers
	r.Handle("/ws", h.ws)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", h.auth.Routes(authMiddleware, limiter))
		r.Mount("/locations", h.location.LocationRoutes(authMiddleware, h.booking.LocationRoutes(authMiddleware)))
		r.Mount("/spaces", h.location.SpaceRoutes(authMiddleware, h.booking.SpaceRoutes))
		r.Mount("/bookings", h.booking.Routes(authMiddleware, limiter))
		r.Mount("/payments", h.payment.Routes(authMiddleware, limiter))
		r.Mount("/notifications", h.notification.Routes(authMiddleware))
	})

	return r
}
