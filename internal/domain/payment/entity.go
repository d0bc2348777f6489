package payment

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents payment status
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// JSONRawMessage handles NULL json fields from DB
type JSONRawMessage []byte

func (j *JSONRawMessage) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

// Value stores an empty message as NULL
func (j JSONRawMessage) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

func (j JSONRawMessage) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONRawMessage) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], b...)
	return nil
}

// Payment is a gateway-confirmed payment for one booking
type Payment struct {
	ID          uuid.UUID      `db:"id"`
	OrderID     string         `db:"order_id"`
	PaymentKey  string         `db:"payment_key"`
	BookingID   uuid.UUID      `db:"booking_id"`
	ArtistID    uuid.UUID      `db:"artist_id"`
	Amount      int64          `db:"amount"`
	Status      Status         `db:"status"`
	Method      string         `db:"method"`
	RawResponse JSONRawMessage `db:"raw_response"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Checkout is a priced reservation waiting for the client-side payment.
// It lives in the checkout store until confirmed or expired.
type Checkout struct {
	OrderID    string     `json:"order_id"`
	ArtistID   uuid.UUID  `json:"artist_id"`
	SpaceID    uuid.UUID  `json:"space_id"`
	LocationID uuid.UUID  `json:"location_id"`
	ArtworkID  *uuid.UUID `json:"artwork_id,omitempty"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Amount     int64      `json:"amount"`
	OrderName  string     `json:"order_name"`
	CreatedAt  time.Time  `json:"created_at"`
}
