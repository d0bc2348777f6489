package events

import (
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/metrics"
)

// ErrMalformedEvent marks payloads that will never decode; they are dropped, not retried
var ErrMalformedEvent = errors.New("malformed event")

// NewRouter creates a watermill router with recovery, logging, retry and metrics
func NewRouter(wlogger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, wlogger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(correlationMiddleware)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		Logger:          wlogger,
	}.Middleware)
	router.AddMiddleware(skipMalformedMiddleware)
	router.AddMiddleware(metricsMiddleware)

	return router, nil
}

// correlationMiddleware puts a request-scoped logger on the message context
func correlationMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get(metadataCorrelationID)
		if correlationID == "" || correlationID == "unknown" {
			correlationID = msg.UUID
		}
		ctx := logger.WithRequestID(msg.Context(), correlationID)
		msg.SetContext(ctx)

		logger.LogDebug(ctx, "Handling event",
			"message_uuid", msg.UUID,
			"type", msg.Metadata.Get(metadataType),
		)
		return next(msg)
	}
}

func skipMalformedMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		if errors.Is(err, ErrMalformedEvent) {
			logger.LogWarn(msg.Context(), "Dropping malformed event", "message_uuid", msg.UUID, "error", err.Error())
			return nil, nil
		}
		return msgs, err
	}
}

func metricsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		metrics.RecordEventHandled(message.HandlerNameFromCtx(msg.Context()), err)
		return msgs, err
	}
}
