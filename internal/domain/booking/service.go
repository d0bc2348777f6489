package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/pkg/events"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/metrics"
	"github.com/wallspace/wallspace-api/internal/pkg/pricing"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// SpaceLookup loads a space with its location; nil, nil when absent
type SpaceLookup interface {
	GetSpace(ctx context.Context, id uuid.UUID) (*location.SpaceWithLocation, error)
}

// EventPublisher publishes booking lifecycle events
type EventPublisher interface {
	PublishBooking(ctx context.Context, ev events.BookingEvent) error
}

// Service implements availability, reservation and the status state machine
type Service struct {
	repo       Repository
	spaces     SpaceLookup
	access     *access.Checker
	events     EventPublisher
	serviceFee int64
	now        func() time.Time
}

// NewService creates booking service
func NewService(repo Repository, spaces SpaceLookup, checker *access.Checker, publisher EventPublisher, serviceFee int64) *Service {
	return &Service{
		repo:       repo,
		spaces:     spaces,
		access:     checker,
		events:     publisher,
		serviceFee: serviceFee,
		now:        time.Now,
	}
}

// ParseRange parses two YYYY-MM-DD dates and checks start <= end
func ParseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(validator.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date: %v", ErrInvalidDateRange, err)
	}
	e, err := time.Parse(validator.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date: %v", ErrInvalidDateRange, err)
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return s, e, nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckAvailability reports whether the space can be booked for [start, end].
// Lookup failures are logged and reported as unavailable.
func (s *Service) CheckAvailability(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error) {
	if start.After(end) {
		return false, ErrInvalidDateRange
	}

	space, err := s.spaces.GetSpace(ctx, spaceID)
	if err != nil {
		logger.LogError(ctx, err, "Availability lookup failed", "space_id", spaceID.String())
		return false, nil
	}
	if space == nil {
		return false, ErrSpaceNotFound
	}
	if space.IsClosed {
		return false, nil
	}

	taken, err := s.repo.HasOverlap(ctx, spaceID, start, end, excludeID)
	if err != nil {
		logger.LogError(ctx, err, "Availability lookup failed", "space_id", spaceID.String())
		return false, nil
	}
	return !taken, nil
}

// Quote prices a stay at a space without reserving it
func (s *Service) Quote(ctx context.Context, spaceID uuid.UUID, start, end time.Time) (*pricing.Quote, error) {
	space, err := s.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	q, err := pricing.Calculate(space.DailyPrice, s.serviceFee, start, end)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	return &q, nil
}

// Prepare validates a reservation request and builds the pending booking it
// would create, priced by the server. Nothing is written.
func (s *Service) Prepare(ctx context.Context, artistID uuid.UUID, req *CreateBookingRequest) (*Booking, *location.SpaceWithLocation, error) {
	start, end, err := ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, err
	}
	if start.Before(s.today()) {
		return nil, nil, ErrStartInPast
	}

	space, err := s.loadSpace(ctx, req.SpaceID)
	if err != nil {
		return nil, nil, err
	}
	if space.IsClosed {
		return nil, nil, ErrSpaceClosed
	}

	quote, err := pricing.Calculate(space.DailyPrice, s.serviceFee, start, end)
	if err != nil {
		return nil, nil, ErrInvalidDateRange
	}
	if req.TotalPrice != nil && *req.TotalPrice != quote.Total {
		return nil, nil, fmt.Errorf("%w: expected %d, got %d", ErrPriceMismatch, quote.Total, *req.TotalPrice)
	}

	b := &Booking{
		ID:         uuid.New(),
		ArtistID:   artistID,
		LocationID: space.LocationID,
		SpaceID:    space.ID,
		StartDate:  start,
		EndDate:    end,
		Status:     StatusPending,
		TotalPrice: quote.Total,
	}
	if req.ArtworkID != nil {
		b.ArtworkID = uuid.NullUUID{UUID: *req.ArtworkID, Valid: true}
	}
	return b, space, nil
}

// Create reserves a space for the calling artist; the booking starts pending
func (s *Service) Create(ctx context.Context, p access.Principal, req *CreateBookingRequest) (*Booking, error) {
	if p.Role != access.RoleArtist && !p.IsAdmin() {
		return nil, ErrForbidden
	}

	b, space, err := s.Prepare(ctx, p.UserID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reserve(ctx, b); err != nil {
		if errors.Is(err, ErrSpaceUnavailable) {
			metrics.RecordBookingConflict()
		}
		return nil, err
	}

	logger.LogInfo(ctx, "Booking created",
		"booking_id", b.ID.String(),
		"space_id", b.SpaceID.String(),
		"artist_id", b.ArtistID.String(),
		"total_price", b.TotalPrice,
	)
	s.AnnounceCreated(ctx, b, space)
	return b, nil
}

// AnnounceCreated records and publishes a newly inserted booking.
// Publish failures are logged; the booking is already committed.
func (s *Service) AnnounceCreated(ctx context.Context, b *Booking, space *location.SpaceWithLocation) {
	metrics.RecordBookingCreated(string(b.Status))

	artistID := b.ArtistID
	ev := newEvent(events.TypeBookingCreated, b, space)
	ev.ToStatus = string(b.Status)
	ev.ActorID = &artistID
	ev.ActorRole = string(access.RelationArtist)
	s.publish(ctx, ev)
}

// Get returns a booking visible to the caller
func (s *Service) Get(ctx context.Context, p access.Principal, id uuid.UUID) (*Booking, error) {
	b, _, err := s.loadWithRelation(ctx, p, id)
	return b, err
}

// History returns the status changes of a booking visible to the caller
func (s *Service) History(ctx context.Context, p access.Principal, id uuid.UUID) ([]*StatusChange, error) {
	if _, _, err := s.loadWithRelation(ctx, p, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// ListMine lists the caller's own bookings, latest start date first
func (s *Service) ListMine(ctx context.Context, artistID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListByArtist(ctx, artistID, filter, limit, offset)
}

// ListForLocation lists the bookings of a location for its manager
func (s *Service) ListForLocation(ctx context.Context, p access.Principal, locationID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}

	ok, err := s.access.CanManageLocation(ctx, p, locationID)
	if err != nil {
		if errors.Is(err, access.ErrLocationNotFound) {
			return nil, 0, ErrLocationNotFound
		}
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListByLocation(ctx, locationID, filter, limit, offset)
}

// Transition applies a requested status change on behalf of the caller
func (s *Service) Transition(ctx context.Context, p access.Principal, id uuid.UUID, req *TransitionRequest) (*Booking, error) {
	to := Status(req.Status)
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}

	b, rel, err := s.loadWithRelation(ctx, p, id)
	if err != nil {
		return nil, err
	}

	actorID := uuid.NullUUID{UUID: p.UserID, Valid: true}
	return s.apply(ctx, b, to, rel, actorID, req.RejectionReason)
}

// CompleteExpired moves confirmed bookings that ended before today to
// completed, acting as the system. Returns how many were completed.
func (s *Service) CompleteExpired(ctx context.Context, batch int) (int, error) {
	due, err := s.repo.ListCompletable(ctx, s.today(), batch)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range due {
		if _, err := s.apply(ctx, b, StatusCompleted, access.RelationSystem, uuid.NullUUID{}, ""); err != nil {
			if errors.Is(err, ErrStatusConflict) {
				logger.LogDebug(ctx, "Booking changed before completion", "booking_id", b.ID.String())
				continue
			}
			logger.LogError(ctx, err, "Failed to complete booking", "booking_id", b.ID.String())
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *Service) apply(ctx context.Context, b *Booking, to Status, rel access.Relation, actorID uuid.NullUUID, reasonText string) (*Booking, error) {
	if err := b.CanTransition(to, rel); err != nil {
		return nil, err
	}

	var reason sql.NullString
	isRejection := b.Status == StatusPending && to == StatusCancelled &&
		(rel == access.RelationManager || rel == access.RelationAdmin)
	if isRejection && reasonText != "" {
		reason = sql.NullString{String: reasonText, Valid: true}
	}

	change := &StatusChange{
		ID:         uuid.New(),
		BookingID:  b.ID,
		FromStatus: b.Status,
		ToStatus:   to,
		ActorID:    actorID,
		ActorRole:  string(rel),
		Reason:     reason,
	}
	updated, err := s.repo.Transition(ctx, change)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(change.FromStatus), string(change.ToStatus))
	logger.LogInfo(ctx, "Booking status changed",
		"booking_id", b.ID.String(),
		"from", string(change.FromStatus),
		"to", string(change.ToStatus),
		"actor_role", change.ActorRole,
	)

	s.announceStatusChange(ctx, updated, change)
	return updated, nil
}

func (s *Service) announceStatusChange(ctx context.Context, b *Booking, change *StatusChange) {
	space, err := s.spaces.GetSpace(ctx, b.SpaceID)
	if err != nil || space == nil {
		logger.LogError(ctx, err, "Status change not published: space lookup failed", "booking_id", b.ID.String())
		return
	}

	ev := newEvent(events.TypeBookingStatusChanged, b, space)
	ev.FromStatus = string(change.FromStatus)
	ev.ToStatus = string(change.ToStatus)
	ev.ActorRole = change.ActorRole
	ev.Reason = change.Reason.String
	if change.ActorID.Valid {
		id := change.ActorID.UUID
		ev.ActorID = &id
	}
	s.publish(ctx, ev)
}

func (s *Service) publish(ctx context.Context, ev events.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBooking(ctx, ev); err != nil {
		logger.LogError(ctx, err, "Failed to publish booking event",
			"type", ev.Type,
			"booking_id", ev.BookingID.String(),
		)
	}
}

func newEvent(typ string, b *Booking, space *location.SpaceWithLocation) events.BookingEvent {
	return events.BookingEvent{
		EventID:      uuid.New(),
		Type:         typ,
		BookingID:    b.ID,
		ArtistID:     b.ArtistID,
		ManagerID:    space.ManagerID,
		LocationID:   b.LocationID,
		SpaceID:      b.SpaceID,
		LocationName: space.LocationName,
		SpaceName:    space.Name,
		StartDate:    b.StartDate.Format(validator.DateLayout),
		EndDate:      b.EndDate.Format(validator.DateLayout),
		OccurredAt:   time.Now().UTC(),
	}
}

func (s *Service) loadSpace(ctx context.Context, id uuid.UUID) (*location.SpaceWithLocation, error) {
	space, err := s.spaces.GetSpace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load space: %w", err)
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}
	return space, nil
}

// loadWithRelation loads a booking and resolves the caller's relation to it;
// callers with no relation get ErrForbidden
func (s *Service) loadWithRelation(ctx context.Context, p access.Principal, id uuid.UUID) (*Booking, access.Relation, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, access.RelationNone, err
	}
	if b == nil {
		return nil, access.RelationNone, ErrBookingNotFound
	}

	rel, err := s.access.BookingRelation(ctx, p, b)
	if err != nil {
		return nil, access.RelationNone, err
	}
	if rel == access.RelationNone {
		return nil, access.RelationNone, ErrForbidden
	}
	return b, rel, nil
}
