package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/pkg/pricing"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// CreateBookingRequest for POST /bookings. TotalPrice is optional; when sent
// it must equal the server's quote.
type CreateBookingRequest struct {
	SpaceID    uuid.UUID  `json:"space_id" validate:"required"`
	ArtworkID  *uuid.UUID `json:"artwork_id"`
	StartDate  string     `json:"start_date" validate:"required,date"`
	EndDate    string     `json:"end_date" validate:"required,date"`
	TotalPrice *int64     `json:"total_price" validate:"omitempty,gte=0"`
}

// TransitionRequest for PATCH /bookings/{id}
type TransitionRequest struct {
	Status          string `json:"status" validate:"required,booking_status"`
	RejectionReason string `json:"rejection_reason" validate:"omitempty,max=500"`
}

// AvailabilityResponse for GET /spaces/{id}/availability
type AvailabilityResponse struct {
	SpaceID   uuid.UUID      `json:"space_id"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Available bool           `json:"available"`
	Quote     *pricing.Quote `json:"quote,omitempty"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	ArtistID        uuid.UUID  `json:"artist_id"`
	LocationID      uuid.UUID  `json:"location_id"`
	SpaceID         uuid.UUID  `json:"space_id"`
	ArtworkID       *uuid.UUID `json:"artwork_id,omitempty"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Status          Status     `json:"status"`
	TotalPrice      int64      `json:"total_price"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	OrderID         string     `json:"order_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookingResponseFromEntity converts a booking
func BookingResponseFromEntity(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID,
		ArtistID:        b.ArtistID,
		LocationID:      b.LocationID,
		SpaceID:         b.SpaceID,
		StartDate:       b.StartDate.Format(validator.DateLayout),
		EndDate:         b.EndDate.Format(validator.DateLayout),
		Status:          b.Status,
		TotalPrice:      b.TotalPrice,
		RejectionReason: b.RejectionReason.String,
		OrderID:         b.OrderID.String,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.ArtworkID.Valid {
		id := b.ArtworkID.UUID
		resp.ArtworkID = &id
	}
	return resp
}

// StatusChangeResponse is one history entry
type StatusChangeResponse struct {
	FromStatus Status     `json:"from_status"`
	ToStatus   Status     `json:"to_status"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole  string     `json:"actor_role"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func statusChangeResponse(c *StatusChange) StatusChangeResponse {
	resp := StatusChangeResponse{
		FromStatus: c.FromStatus,
		ToStatus:   c.ToStatus,
		ActorRole:  c.ActorRole,
		Reason:     c.Reason.String,
		CreatedAt:  c.CreatedAt,
	}
	if c.ActorID.Valid {
		id := c.ActorID.UUID
		resp.ActorID = &id
	}
	return resp
}
