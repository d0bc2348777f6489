package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookings carries every booking lifecycle event
const TopicBookings = "booking.events"

// Booking event types, stored in the "type" metadata key
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the wire contract between the API and the worker
type BookingEvent struct {
	EventID      uuid.UUID  `json:"event_id"`
	Type         string     `json:"type"`
	BookingID    uuid.UUID  `json:"booking_id"`
	ArtistID     uuid.UUID  `json:"artist_id"`
	ManagerID    uuid.UUID  `json:"manager_id"`
	LocationID   uuid.UUID  `json:"location_id"`
	SpaceID      uuid.UUID  `json:"space_id"`
	LocationName string     `json:"location_name"`
	SpaceName    string     `json:"space_name"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	FromStatus   string     `json:"from_status,omitempty"`
	ToStatus     string     `json:"to_status"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole    string     `json:"actor_role"`
	Reason       string     `json:"reason,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
