package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/pkg/events"
)

type fakeRepo struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*Booking
	history    []*StatusChange
	overlapErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[uuid.UUID]*Booking{}}
}

func (f *fakeRepo) add(b *Booking) *Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return b
}

func (f *fakeRepo) overlapLocked(spaceID uuid.UUID, start, end time.Time, exclude uuid.NullUUID) bool {
	for _, b := range f.bookings {
		if b.SpaceID != spaceID || (exclude.Valid && b.ID == exclude.UUID) {
			continue
		}
		if (b.Status == StatusPending || b.Status == StatusConfirmed) && b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Reserve(_ context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlapLocked(b.SpaceID, b.StartDate, b.EndDate, uuid.NullUUID{}) {
		return ErrSpaceUnavailable
	}
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeRepo) HasOverlap(_ context.Context, spaceID uuid.UUID, start, end time.Time, exclude uuid.NullUUID) (bool, error) {
	if f.overlapErr != nil {
		return false, f.overlapErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlapLocked(spaceID, start, end, exclude), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) GetByOrderID(_ context.Context, orderID string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.OrderID.Valid && b.OrderID.String == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) listWhere(match func(*Booking) bool, filter ListFilter) ([]*Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, b := range f.bookings {
		if match(b) && (filter.Status == "" || b.Status == filter.Status) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListByArtist(_ context.Context, artistID uuid.UUID, filter ListFilter, _, _ int) ([]*Booking, int, error) {
	return f.listWhere(func(b *Booking) bool { return b.ArtistID == artistID }, filter)
}

func (f *fakeRepo) ListByLocation(_ context.Context, locationID uuid.UUID, filter ListFilter, _, _ int) ([]*Booking, int, error) {
	return f.listWhere(func(b *Booking) bool { return b.LocationID == locationID }, filter)
}

func (f *fakeRepo) ListCompletable(_ context.Context, before time.Time, limit int) ([]*Booking, error) {
	items, _, err := f.listWhere(func(b *Booking) bool { return b.EndDate.Before(before) }, ListFilter{Status: StatusConfirmed})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, err
}

func (f *fakeRepo) Transition(_ context.Context, change *StatusChange) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[change.BookingID]
	if !ok || b.Status != change.FromStatus {
		return nil, ErrStatusConflict
	}
	b.Status = change.ToStatus
	if change.Reason.Valid {
		b.RejectionReason = change.Reason
	}
	change.CreatedAt = time.Now()
	f.history = append(f.history, change)
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) History(_ context.Context, bookingID uuid.UUID) ([]*StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*StatusChange
	for _, c := range f.history {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeSpaces serves both space lookups and location managers
type fakeSpaces struct {
	spaces map[uuid.UUID]*location.SpaceWithLocation
	err    error
}

func (f *fakeSpaces) GetSpace(_ context.Context, id uuid.UUID) (*location.SpaceWithLocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.spaces[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSpaces) ManagerOf(_ context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	for _, s := range f.spaces {
		if s.LocationID == locationID {
			return s.ManagerID, nil
		}
	}
	return uuid.Nil, access.ErrLocationNotFound
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *fakePublisher) PublishBooking(_ context.Context, ev events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	spaces    *fakeSpaces
	published *fakePublisher
	space     *location.SpaceWithLocation
	artist    access.Principal
	manager   access.Principal
}

var fixedNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	managerID := uuid.New()
	space := &location.SpaceWithLocation{
		Space: location.Space{
			ID:         uuid.New(),
			LocationID: uuid.New(),
			Name:       "Window wall",
			Capacity:   1,
			DailyPrice: 30000,
		},
		LocationName: "Cafe Onion",
		ManagerID:    managerID,
	}

	spaces := &fakeSpaces{spaces: map[uuid.UUID]*location.SpaceWithLocation{space.ID: space}}
	repo := newFakeRepo()
	pub := &fakePublisher{}
	svc := NewService(repo, spaces, access.NewChecker(spaces), pub, 5000)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:       svc,
		repo:      repo,
		spaces:    spaces,
		published: pub,
		space:     space,
		artist:    access.Principal{UserID: uuid.New(), Role: access.RoleArtist},
		manager:   access.Principal{UserID: managerID, Role: access.RoleManager},
	}
}

func (f *fixture) booking(status Status, start, end string) *Booking {
	s, e, err := ParseRange(start, end)
	if err != nil {
		panic(err)
	}
	return f.repo.add(&Booking{
		ID:         uuid.New(),
		ArtistID:   f.artist.UserID,
		LocationID: f.space.LocationID,
		SpaceID:    f.space.ID,
		StartDate:  s,
		EndDate:    e,
		Status:     status,
		TotalPrice: 215000,
	})
}
