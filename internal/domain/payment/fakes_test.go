package payment

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/pkg/paygate"
)

type fakeRepo struct {
	mu        sync.Mutex
	payments  map[string]*Payment
	bookings  map[uuid.UUID]*booking.Booking
	createErr error
	// onCreate runs before the write, standing in for a concurrent request
	onCreate func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[string]*Payment{}, bookings: map[uuid.UUID]*booking.Booking{}}
}

func (f *fakeRepo) GetByOrderID(_ context.Context, orderID string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[orderID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) CreateWithBooking(_ context.Context, b *booking.Booking, p *Payment) error {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.payments[p.OrderID]; ok {
		return ErrDuplicateOrder
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	bc, pc := *b, *p
	f.bookings[b.ID] = &bc
	f.payments[p.OrderID] = &pc
	return nil
}

func (f *fakeRepo) ListByArtist(_ context.Context, artistID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Payment
	for _, p := range f.payments {
		if p.ArtistID == artistID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

type fakeGateway struct {
	mu         sync.Mutex
	confirms   int
	cancels    []string
	confirmErr error
}

func (g *fakeGateway) Confirm(_ context.Context, req paygate.ConfirmRequest) (*paygate.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirms++
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	p := &paygate.Payment{
		PaymentKey:  req.PaymentKey,
		OrderID:     req.OrderID,
		Status:      "DONE",
		Method:      "card",
		TotalAmount: req.Amount,
	}
	p.Raw, _ = json.Marshal(p)
	return p, nil
}

func (g *fakeGateway) Cancel(_ context.Context, paymentKey, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancels = append(g.cancels, paymentKey+":"+reason)
	return nil
}

type fakeBookings struct {
	space      *location.SpaceWithLocation
	serviceFee int64
	taken      bool
	announced  []*booking.Booking
}

func (f *fakeBookings) Prepare(_ context.Context, artistID uuid.UUID, req *booking.CreateBookingRequest) (*booking.Booking, *location.SpaceWithLocation, error) {
	if req.SpaceID != f.space.ID {
		return nil, nil, booking.ErrSpaceNotFound
	}
	start, end, err := booking.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, err
	}
	days := int64(end.Sub(start).Hours() / 24)
	if days == 0 {
		days = 1
	}
	return &booking.Booking{
		ID:         uuid.New(),
		ArtistID:   artistID,
		LocationID: f.space.LocationID,
		SpaceID:    f.space.ID,
		StartDate:  start,
		EndDate:    end,
		Status:     booking.StatusPending,
		TotalPrice: days*f.space.DailyPrice + f.serviceFee,
	}, f.space, nil
}

func (f *fakeBookings) CheckAvailability(context.Context, uuid.UUID, time.Time, time.Time, uuid.NullUUID) (bool, error) {
	return !f.taken, nil
}

func (f *fakeBookings) AnnounceCreated(_ context.Context, b *booking.Booking, _ *location.SpaceWithLocation) {
	f.announced = append(f.announced, b)
}

type fixture struct {
	repo     *fakeRepo
	store    CheckoutStore
	gateway  *fakeGateway
	bookings *fakeBookings
	service  *Service
}

func newFixture() *fixture {
	space := &location.SpaceWithLocation{
		Space: location.Space{
			ID:         uuid.New(),
			LocationID: uuid.New(),
			Name:       "Window wall",
			DailyPrice: 30000,
		},
		LocationName: "Cafe Mori",
		ManagerID:    uuid.New(),
	}
	f := &fixture{
		repo:     newFakeRepo(),
		store:    newMemoryCheckoutStore(),
		gateway:  &fakeGateway{},
		bookings: &fakeBookings{space: space, serviceFee: 5000},
	}
	f.service = NewService(f.repo, f.store, f.gateway, f.bookings, f.repo, time.Minute)
	return f
}
