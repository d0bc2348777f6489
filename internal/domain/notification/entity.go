package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeBookingRequested Type = "booking_requested" // Manager: new booking at their location
	TypeBookingConfirmed Type = "booking_confirmed" // Artist: manager confirmed
	TypeBookingRejected  Type = "booking_rejected"  // Artist: manager rejected a pending booking
	TypeBookingCancelled Type = "booking_cancelled" // Either side: the other party cancelled
	TypeBookingCompleted Type = "booking_completed" // Artist: exhibition finished
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Type      Type            `db:"type"`
	Title     string          `db:"title"`
	Body      sql.NullString  `db:"body"`
	Data      json.RawMessage `db:"data"`
	IsRead    bool            `db:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// Data links a notification to the booking it is about
type Data struct {
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	SpaceID    *uuid.UUID `json:"space_id,omitempty"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *Data) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *Data {
	if len(n.Data) == 0 {
		return &Data{}
	}
	var data Data
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
