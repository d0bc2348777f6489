package notification

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/pkg/events"
)

// HandlerName is the watermill handler (and consumer group suffix) for booking events
const HandlerName = "notification.booking_events"

// Consumer turns booking events into notifications
type Consumer struct {
	service *Service
}

// NewConsumer creates booking event consumer
func NewConsumer(service *Service) *Consumer {
	return &Consumer{service: service}
}

// Register adds the consumer to a watermill router
func (c *Consumer) Register(router *message.Router, subscriber message.Subscriber) {
	router.AddNoPublisherHandler(HandlerName, events.TopicBookings, subscriber, c.Handle)
}

// Handle is the watermill handler. Returning an error redelivers the message.
func (c *Consumer) Handle(msg *message.Message) error {
	ev, err := events.DecodeBooking(msg)
	if err != nil {
		return err
	}
	return c.HandleEvent(msg.Context(), ev)
}

// HandleEvent stores the notification for ev, if any. The event id is the
// notification id, which makes redelivery harmless.
func (c *Consumer) HandleEvent(ctx context.Context, ev events.BookingEvent) error {
	target, ok := recipient(ev)
	if !ok {
		return nil
	}

	bookingID, spaceID, locationID := ev.BookingID, ev.SpaceID, ev.LocationID
	data := &Data{BookingID: &bookingID, SpaceID: &spaceID, LocationID: &locationID}

	if _, err := c.service.Create(ctx, ev.EventID, target.userID, target.kind, target.title, target.body, data); err != nil {
		return fmt.Errorf("notify %s for %s: %w", target.userID, ev.Type, err)
	}
	return nil
}

type delivery struct {
	userID uuid.UUID
	kind   Type
	title  string
	body   string
}

// recipient picks who hears about ev: the manager for a new booking, the
// artist when the venue side or the system acted, the manager when the
// artist cancelled.
func recipient(ev events.BookingEvent) (delivery, bool) {
	where := fmt.Sprintf("%s at %s (%s ~ %s)", ev.SpaceName, ev.LocationName, ev.StartDate, ev.EndDate)

	switch ev.Type {
	case events.TypeBookingCreated:
		if ev.ManagerID == uuid.Nil {
			return delivery{}, false
		}
		title := "New booking request"
		if ev.ToStatus == "confirmed" {
			title = "New paid booking"
		}
		return delivery{ev.ManagerID, TypeBookingRequested, title, where}, true

	case events.TypeBookingStatusChanged:
		if ev.ActorRole == "artist" {
			if ev.ToStatus != "cancelled" || ev.ManagerID == uuid.Nil {
				return delivery{}, false
			}
			return delivery{ev.ManagerID, TypeBookingCancelled, "Booking cancelled by the artist", where}, true
		}

		switch ev.ToStatus {
		case "confirmed":
			return delivery{ev.ArtistID, TypeBookingConfirmed, "Your booking was confirmed", where}, true
		case "completed":
			return delivery{ev.ArtistID, TypeBookingCompleted, "Your exhibition has ended", where}, true
		case "cancelled":
			if ev.FromStatus == "pending" {
				body := where
				if ev.Reason != "" {
					body += ": " + ev.Reason
				}
				return delivery{ev.ArtistID, TypeBookingRejected, "Your booking request was declined", body}, true
			}
			return delivery{ev.ArtistID, TypeBookingCancelled, "Your booking was cancelled by the venue", where}, true
		}
	}
	return delivery{}, false
}
