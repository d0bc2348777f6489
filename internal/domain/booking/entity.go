package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/access"
)

// Status is the booking lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses hold a space; only these take part in overlap checks
var ActiveStatuses = []string{string(StatusPending), string(StatusConfirmed)}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Transitions lists, per edge, the relations allowed to take it
var Transitions = map[Status]map[Status][]access.Relation{
	StatusPending: {
		StatusConfirmed: {access.RelationManager, access.RelationAdmin},
		StatusCancelled: {access.RelationArtist, access.RelationManager, access.RelationAdmin},
	},
	StatusConfirmed: {
		StatusCancelled: {access.RelationArtist, access.RelationManager, access.RelationAdmin},
		StatusCompleted: {access.RelationManager, access.RelationAdmin, access.RelationSystem},
	},
}

// Booking is an artist's reservation of a space for an inclusive date range
type Booking struct {
	ID              uuid.UUID      `db:"id"`
	ArtistID        uuid.UUID      `db:"artist_id"`
	LocationID      uuid.UUID      `db:"location_id"`
	SpaceID         uuid.UUID      `db:"space_id"`
	ArtworkID       uuid.NullUUID  `db:"artwork_id"`
	StartDate       time.Time      `db:"start_date"`
	EndDate         time.Time      `db:"end_date"`
	Status          Status         `db:"status"`
	TotalPrice      int64          `db:"total_price"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	PaymentKey      sql.NullString `db:"payment_key"`
	OrderID         sql.NullString `db:"order_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// OwnerID implements access.Owned
func (b *Booking) OwnerID() uuid.UUID { return b.ArtistID }

// OwnerLocationID implements access.Owned
func (b *Booking) OwnerLocationID() uuid.UUID { return b.LocationID }

// CanTransition checks the edge b.Status -> to for a relation.
// ErrInvalidTransition when the edge does not exist (including to == current),
// ErrForbidden when it exists but not for rel.
func (b *Booking) CanTransition(to Status, rel access.Relation) error {
	edges, ok := Transitions[b.Status]
	if !ok {
		return ErrInvalidTransition
	}
	allowed, ok := edges[to]
	if !ok {
		return ErrInvalidTransition
	}
	for _, r := range allowed {
		if r == rel {
			return nil
		}
	}
	return ErrForbidden
}

// Overlaps reports whether the inclusive ranges of b and [start, end] intersect
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// StatusChange is one row of a booking's audit trail
type StatusChange struct {
	ID         uuid.UUID      `db:"id"`
	BookingID  uuid.UUID      `db:"booking_id"`
	FromStatus Status         `db:"from_status"`
	ToStatus   Status         `db:"to_status"`
	ActorID    uuid.NullUUID  `db:"actor_id"`
	ActorRole  string         `db:"actor_role"`
	Reason     sql.NullString `db:"reason"`
	CreatedAt  time.Time      `db:"created_at"`
}

// ListFilter narrows booking lists
type ListFilter struct {
	Status Status
}
