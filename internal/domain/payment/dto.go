package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/booking"
)

// CheckoutRequest for POST /payments/checkout
type CheckoutRequest struct {
	SpaceID   uuid.UUID  `json:"space_id" validate:"required"`
	ArtworkID *uuid.UUID `json:"artwork_id"`
	StartDate string     `json:"start_date" validate:"required,date"`
	EndDate   string     `json:"end_date" validate:"required,date"`
}

func (r *CheckoutRequest) bookingRequest() *booking.CreateBookingRequest {
	return &booking.CreateBookingRequest{
		SpaceID:   r.SpaceID,
		ArtworkID: r.ArtworkID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// CheckoutResponse feeds the client-side payment widget
type CheckoutResponse struct {
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	OrderName string    `json:"order_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmRequest for POST /payments/confirm.
// The reservation fields are only read when no checkout is stored for the order.
type ConfirmRequest struct {
	PaymentKey string     `json:"payment_key" validate:"required,max=200"`
	OrderID    string     `json:"order_id" validate:"required,max=64"`
	Amount     int64      `json:"amount" validate:"gte=0"`
	SpaceID    *uuid.UUID `json:"space_id"`
	ArtworkID  *uuid.UUID `json:"artwork_id"`
	StartDate  string     `json:"start_date" validate:"omitempty,date"`
	EndDate    string     `json:"end_date" validate:"omitempty,date"`
}

func (r *ConfirmRequest) hasInlineReservation() bool {
	return r.SpaceID != nil && r.StartDate != "" && r.EndDate != ""
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID      `json:"id"`
	OrderID    string         `json:"order_id"`
	PaymentKey string         `json:"payment_key"`
	BookingID  uuid.UUID      `json:"booking_id"`
	Amount     int64          `json:"amount"`
	Status     Status         `json:"status"`
	Method     string         `json:"method,omitempty"`
	Raw        JSONRawMessage `json:"raw_response,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PaymentResponseFromEntity converts a payment
func PaymentResponseFromEntity(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		OrderID:    p.OrderID,
		PaymentKey: p.PaymentKey,
		BookingID:  p.BookingID,
		Amount:     p.Amount,
		Status:     p.Status,
		Method:     p.Method,
		Raw:        p.RawResponse,
		CreatedAt:  p.CreatedAt,
	}
}

// ConfirmResponse is the result of a confirm call
type ConfirmResponse struct {
	Booking  booking.BookingResponse `json:"booking"`
	Payment  PaymentResponse         `json:"payment"`
	Replayed bool                    `json:"replayed"`
}
