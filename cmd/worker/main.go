package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wallspace/wallspace-api/internal/config"
	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/domain/notification"
	"github.com/wallspace/wallspace-api/internal/pkg/database"
	"github.com/wallspace/wallspace-api/internal/pkg/events"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/metrics"
)

const (
	consumerGroup   = "wallspace.notifications"
	cleanupInterval = 24 * time.Hour
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "wallspace-worker",
	})

	log.Info().Msg("Starting worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb == nil {
		log.Fatal().Msg("Worker needs REDIS_URL; without Redis the API runs these jobs itself")
	}
	defer database.CloseRedis(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	wlogger := events.NewZerologAdapter(log.Logger)
	transport, err := events.NewTransport(rdb, consumerGroup, wlogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event transport")
	}
	defer transport.Close()

	locationRepo := location.NewRepository(db)
	bookingService := booking.NewService(
		booking.NewRepository(db),
		locationRepo,
		access.NewChecker(locationRepo),
		events.NewBus(transport.Publisher),
		cfg.BookingServiceFee,
	)

	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, notification.NewRedisPublisher(rdb))

	router, err := events.NewRouter(wlogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create event router")
	}
	notification.NewConsumer(notificationService).Register(router, transport.Subscriber)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := router.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Event router stopped")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		booking.NewSweeper(bookingService, cfg.SweepInterval).Run(ctx)
	}()
	go func() {
		defer wg.Done()
		notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays).Start(ctx, cleanupInterval)
	}()

	go func() {
		log.Info().Str("addr", metricsServer.Addr).Msg("Worker metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown")
	}

	wg.Wait()
	log.Info().Msg("Worker stopped")
}
