package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/wallspace/wallspace-api/internal/pkg/logger"
)

const (
	metadataType          = "type"
	metadataCorrelationID = "correlation_id"
)

// Bus publishes JSON-encoded domain events
type Bus struct {
	publisher message.Publisher
}

// NewBus creates an event bus over a watermill publisher
func NewBus(publisher message.Publisher) *Bus {
	return &Bus{publisher: publisher}
}

// PublishBooking publishes a booking event on TopicBookings.
// The event id doubles as the message UUID so consumers can dedupe.
func (b *Bus) PublishBooking(ctx context.Context, ev BookingEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	msg := message.NewMessage(ev.EventID.String(), payload)
	msg.Metadata.Set(metadataType, ev.Type)
	msg.Metadata.Set(metadataCorrelationID, logger.RequestID(ctx))

	if err := b.publisher.Publish(TopicBookings, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// DecodeBooking reads a BookingEvent from a message
func DecodeBooking(msg *message.Message) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type == "" {
		ev.Type = msg.Metadata.Get(metadataType)
	}
	return ev, nil
}
