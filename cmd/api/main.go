package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/wallspace/wallspace-api/internal/config"
	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/auth"
	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/domain/notification"
	"github.com/wallspace/wallspace-api/internal/domain/payment"
	"github.com/wallspace/wallspace-api/internal/domain/user"
	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/database"
	"github.com/wallspace/wallspace-api/internal/pkg/events"
	"github.com/wallspace/wallspace-api/internal/pkg/imaging"
	"github.com/wallspace/wallspace-api/internal/pkg/jwt"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/oidc"
	"github.com/wallspace/wallspace-api/internal/pkg/paygate"
	"github.com/wallspace/wallspace-api/internal/pkg/storage"
)

const consumerGroup = "wallspace.api"

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "wallspace-api",
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting WallSpace API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	store, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		PublicURL:   cfg.S3PublicURL,
		R2AccountID: cfg.R2AccountID,
		LocalPath:   cfg.LocalPath,
	})
	if errors.Is(err, storage.ErrNotConfigured) {
		log.Warn().Err(err).Msg("Space image uploads disabled")
		store = nil
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}

	// ---------- Events ----------
	wlogger := events.NewZerologAdapter(log.Logger)
	transport, err := events.NewTransport(rdb, consumerGroup, wlogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event transport")
	}
	defer transport.Close()
	bus := events.NewBus(transport.Publisher)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	locationRepo := location.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := notification.NewHub(rdb)
	go hub.Run()

	// ---------- Services ----------
	checker := access.NewChecker(locationRepo)
	authService := auth.NewService(userRepo, jwtService, auth.NewTokenStore(rdb), oidc.NewClient(cfg.OIDCUserinfoURLs, 10*time.Second))
	locationService := location.NewService(locationRepo, checker, store, imaging.NewProcessor(imaging.DefaultConfig()))
	bookingService := booking.NewService(bookingRepo, locationRepo, checker, bus, cfg.BookingServiceFee)
	gateway := paygate.NewClient(paygate.Config{
		BaseURL:   cfg.PaygateBaseURL,
		SecretKey: cfg.PaygateSecretKey,
		Timeout:   cfg.PaygateTimeout,
	})
	paymentService := payment.NewService(paymentRepo, payment.NewCheckoutStore(rdb), gateway, bookingService, bookingRepo, cfg.CheckoutTTL)
	notificationService := notification.NewService(notificationRepo, notification.NewWSPublisher(hub))

	// Without Redis there is no worker to hand events to, so this process
	// consumes its own events and runs the periodic jobs.
	if transport.InProcess() {
		router, err := events.NewRouter(wlogger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create event router")
		}
		notification.NewConsumer(notificationService).Register(router, transport.Subscriber)
		go runEventRouter(ctx, router)
		go booking.NewSweeper(bookingService, cfg.SweepInterval).Run(ctx)
		go notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays).Start(ctx, 24*time.Hour)
		log.Warn().Msg("Running events in-process; start cmd/worker with Redis for multi-instance delivery")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, 5*time.Minute)

	r := newRouter(cfg.AllowedOrigins, middleware.Auth(jwtService), limiter.Handler, handlers{
		auth:         auth.NewHandler(authService),
		location:     location.NewHandler(locationService),
		booking:      booking.NewHandler(bookingService),
		payment:      payment.NewHandler(paymentService, cfg.FrontendURL),
		notification: notification.NewHandler(notificationService),
		ws:           notification.NewWSHandler(hub, jwtService, cfg.AllowedOrigins),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func runEventRouter(ctx context.Context, router *message.Router) {
	if err := router.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Event router stopped")
	}
}
