// Package access answers "what is this caller to this resource" in one place,
// so booking, space and location handlers share the same ownership rules.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// User roles
const (
	RoleArtist  = "artist"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Relation is how a principal stands to a booking
type Relation string

const (
	RelationNone    Relation = ""
	RelationArtist  Relation = "artist"
	RelationManager Relation = "manager"
	RelationAdmin   Relation = "admin"
	// RelationSystem is used by background jobs, never resolved from a request
	RelationSystem Relation = "system"
)

// ErrLocationNotFound is returned when the location in question does not exist
var ErrLocationNotFound = errors.New("location not found")

// Principal is the authenticated caller
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the caller has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Authenticated reports whether a user id is present
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// Owned is anything that belongs to an artist at a location
type Owned interface {
	OwnerID() uuid.UUID
	OwnerLocationID() uuid.UUID
}

// LocationManagers resolves who manages a location
type LocationManagers interface {
	ManagerOf(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error)
}

// Checker resolves relations against stored ownership, never client input
type Checker struct {
	locations LocationManagers
}

// NewChecker creates a checker
func NewChecker(locations LocationManagers) *Checker {
	return &Checker{locations: locations}
}

// BookingRelation returns the principal's relation to a booking.
// Admin wins over artist and manager, then artist over manager.
func (c *Checker) BookingRelation(ctx context.Context, p Principal, b Owned) (Relation, error) {
	if !p.Authenticated() {
		return RelationNone, nil
	}
	if p.IsAdmin() {
		return RelationAdmin, nil
	}
	if b.OwnerID() == p.UserID {
		return RelationArtist, nil
	}

	ok, err := c.CanManageLocation(ctx, p, b.OwnerLocationID())
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return RelationNone, nil
		}
		return RelationNone, err
	}
	if ok {
		return RelationManager, nil
	}
	return RelationNone, nil
}

// CanManageLocation reports whether the principal may act as manager of a location
func (c *Checker) CanManageLocation(ctx context.Context, p Principal, locationID uuid.UUID) (bool, error) {
	if !p.Authenticated() {
		return false, nil
	}
	if p.IsAdmin() {
		return true, nil
	}
	if p.Role != RoleManager {
		return false, nil
	}

	managerID, err := c.locations.ManagerOf(ctx, locationID)
	if err != nil {
		return false, fmt.Errorf("resolve location manager: %w", err)
	}
	return managerID == p.UserID, nil
}
