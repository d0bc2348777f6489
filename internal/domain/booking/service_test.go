package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/pkg/events"
)

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("no bookings", func(t *testing.T) {
		f := newFixture()
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("exact range confirmed", func(t *testing.T) {
		f := newFixture()
		f.booking(StatusConfirmed, "2025-07-20", "2025-07-27")
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("touching end date", func(t *testing.T) {
		f := newFixture()
		f.booking(StatusPending, "2025-07-13", "2025-07-20")
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("cancelled bookings free the space", func(t *testing.T) {
		f := newFixture()
		f.booking(StatusCancelled, "2025-07-20", "2025-07-27")
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("excluded booking ignored", func(t *testing.T) {
		f := newFixture()
		b := f.booking(StatusConfirmed, "2025-07-20", "2025-07-27")
		start, end, _ := ParseRange("2025-07-21", "2025-07-28")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{UUID: b.ID, Valid: true})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("query error fails closed", func(t *testing.T) {
		f := newFixture()
		f.repo.overlapErr = errors.New("connection reset")
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("closed space", func(t *testing.T) {
		f := newFixture()
		f.space.IsClosed = true
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		ok, err := f.svc.CheckAvailability(ctx, f.space.ID, start, end, uuid.NullUUID{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reversed range", func(t *testing.T) {
		f := newFixture()
		start, end, _ := ParseRange("2025-07-20", "2025-07-27")
		_, err := f.svc.CheckAvailability(ctx, f.space.ID, end, start, uuid.NullUUID{})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestCreatePricesAndPublishes(t *testing.T) {
	f := newFixture()
	total := int64(215000)

	b, err := f.svc.Create(context.Background(), f.artist, &CreateBookingRequest{
		SpaceID:    f.space.ID,
		StartDate:  "2025-07-20",
		EndDate:    "2025-07-27",
		TotalPrice: &total,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, total, b.TotalPrice)
	assert.Equal(t, f.space.LocationID, b.LocationID)
	assert.Equal(t, []string{events.TypeBookingCreated}, f.published.types())
	assert.Equal(t, f.manager.UserID, f.published.events[0].ManagerID)
}

func TestCreateRejections(t *testing.T) {
	wrong := int64(1)

	tests := []struct {
		name    string
		caller  func(f *fixture) access.Principal
		req     func(f *fixture) *CreateBookingRequest
		prepare func(f *fixture)
		want    error
	}{
		{
			name: "price mismatch",
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-07-20", EndDate: "2025-07-27", TotalPrice: &wrong}
			},
			want: ErrPriceMismatch,
		},
		{
			name: "reversed dates",
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-07-27", EndDate: "2025-07-20"}
			},
			want: ErrInvalidDateRange,
		},
		{
			name: "start in the past",
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-06-20", EndDate: "2025-07-20"}
			},
			want: ErrStartInPast,
		},
		{
			name: "unknown space",
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: uuid.New(), StartDate: "2025-07-20", EndDate: "2025-07-27"}
			},
			want: ErrSpaceNotFound,
		},
		{
			name:    "closed space",
			prepare: func(f *fixture) { f.space.IsClosed = true },
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-07-20", EndDate: "2025-07-27"}
			},
			want: ErrSpaceClosed,
		},
		{
			name:    "overlap",
			prepare: func(f *fixture) { f.booking(StatusConfirmed, "2025-07-25", "2025-07-30") },
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-07-20", EndDate: "2025-07-27"}
			},
			want: ErrSpaceUnavailable,
		},
		{
			name:   "manager cannot book",
			caller: func(f *fixture) access.Principal { return f.manager },
			req: func(f *fixture) *CreateBookingRequest {
				return &CreateBookingRequest{SpaceID: f.space.ID, StartDate: "2025-07-20", EndDate: "2025-07-27"}
			},
			want: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.prepare != nil {
				tt.prepare(f)
			}
			caller := f.artist
			if tt.caller != nil {
				caller = tt.caller(f)
			}

			_, err := f.svc.Create(context.Background(), caller, tt.req(f))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.published.types())
		})
	}
}

func TestTransitionByStrangerForbidden(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusPending, "2025-07-20", "2025-07-27")
	stranger := access.Principal{UserID: uuid.New(), Role: access.RoleManager}

	_, err := f.svc.Transition(context.Background(), stranger, b.ID, &TransitionRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestArtistCannotConfirmOwnBooking(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusPending, "2025-07-20", "2025-07-27")

	_, err := f.svc.Transition(context.Background(), f.artist, b.ID, &TransitionRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancellingCancelledBookingIsRejected(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusCancelled, "2025-07-20", "2025-07-27")

	_, err := f.svc.Transition(context.Background(), f.artist, b.ID, &TransitionRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.repo.history)
}

func TestManagerRejectionStoresReason(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusPending, "2025-07-20", "2025-07-27")

	updated, err := f.svc.Transition(context.Background(), f.manager, b.ID, &TransitionRequest{
		Status:          "cancelled",
		RejectionReason: "Wall is being repainted",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, updated.Status)
	assert.Equal(t, "Wall is being repainted", updated.RejectionReason.String)

	history, err := f.svc.History(context.Background(), f.artist, b.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "manager", history[0].ActorRole)
	assert.Equal(t, f.manager.UserID, history[0].ActorID.UUID)

	require.Len(t, f.published.events, 1)
	ev := f.published.events[0]
	assert.Equal(t, events.TypeBookingStatusChanged, ev.Type)
	assert.Equal(t, "pending", ev.FromStatus)
	assert.Equal(t, "cancelled", ev.ToStatus)
}

func TestArtistCancelIgnoresReason(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusConfirmed, "2025-07-20", "2025-07-27")

	updated, err := f.svc.Transition(context.Background(), f.artist, b.ID, &TransitionRequest{
		Status:          "cancelled",
		RejectionReason: "changed my mind",
	})
	require.NoError(t, err)
	assert.False(t, updated.RejectionReason.Valid)
}

func TestGetRequiresRelation(t *testing.T) {
	f := newFixture()
	b := f.booking(StatusPending, "2025-07-20", "2025-07-27")

	_, err := f.svc.Get(context.Background(), access.Principal{UserID: uuid.New(), Role: access.RoleArtist}, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(context.Background(), f.manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.Get(context.Background(), f.artist, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListForLocationRequiresManager(t *testing.T) {
	f := newFixture()
	f.booking(StatusPending, "2025-07-20", "2025-07-27")

	_, _, err := f.svc.ListForLocation(context.Background(), f.artist, f.space.LocationID, ListFilter{}, 20, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	items, total, err := f.svc.ListForLocation(context.Background(), f.manager, f.space.LocationID, ListFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)

	_, _, err = f.svc.ListForLocation(context.Background(), f.manager, uuid.New(), ListFilter{}, 20, 0)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestCompleteExpiredActsAsSystem(t *testing.T) {
	f := newFixture()
	past := f.booking(StatusConfirmed, "2025-06-01", "2025-06-07")
	f.booking(StatusConfirmed, "2025-06-25", "2025-07-05")
	f.booking(StatusPending, "2025-06-01", "2025-06-07")

	n, err := f.svc.CompleteExpired(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := f.repo.GetByID(context.Background(), past.ID)
	assert.Equal(t, StatusCompleted, got.Status)

	require.Len(t, f.repo.history, 1)
	assert.Equal(t, "system", f.repo.history[0].ActorRole)
	assert.False(t, f.repo.history[0].ActorID.Valid)
}

func TestSweeperDrainsInBatches(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.booking(StatusConfirmed, "2025-06-01", "2025-06-02")
	}

	n := NewSweeper(f.svc, 0).Sweep(context.Background())
	assert.Equal(t, 3, n)
}
