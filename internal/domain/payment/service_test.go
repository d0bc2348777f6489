package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/pkg/paygate"
)

func (f *fixture) checkout(t *testing.T, artist access.Principal) *Checkout {
	t.Helper()
	c, err := f.service.Checkout(context.Background(), artist, &CheckoutRequest{
		SpaceID:   f.bookings.space.ID,
		StartDate: "2030-07-20",
		EndDate:   "2030-07-27",
	})
	require.NoError(t, err)
	return c
}

func artist() access.Principal {
	return access.Principal{UserID: uuid.New(), Role: access.RoleArtist}
}

func TestCheckoutPricesAndStores(t *testing.T) {
	f := newFixture()
	a := artist()

	c := f.checkout(t, a)

	assert.Equal(t, int64(215000), c.Amount)
	assert.Contains(t, c.OrderID, orderIDPrefix)
	assert.Contains(t, c.OrderName, "Cafe Mori")

	stored, err := f.store.Get(context.Background(), c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, a.UserID, stored.ArtistID)
}

func TestCheckoutRejectsManagerAndTakenSpace(t *testing.T) {
	f := newFixture()

	_, err := f.service.Checkout(context.Background(), access.Principal{UserID: uuid.New(), Role: access.RoleManager}, &CheckoutRequest{
		SpaceID: f.bookings.space.ID, StartDate: "2030-07-20", EndDate: "2030-07-21",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	f.bookings.taken = true
	_, err = f.service.Checkout(context.Background(), artist(), &CheckoutRequest{
		SpaceID: f.bookings.space.ID, StartDate: "2030-07-20", EndDate: "2030-07-21",
	})
	assert.ErrorIs(t, err, booking.ErrSpaceUnavailable)
}

func TestConfirmCreatesConfirmedBooking(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)

	res, err := f.service.Confirm(context.Background(), &a, &ConfirmRequest{
		PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount,
	})
	require.NoError(t, err)

	assert.False(t, res.Replayed)
	assert.Equal(t, booking.StatusConfirmed, res.Booking.Status)
	assert.Equal(t, c.OrderID, res.Booking.OrderID.String)
	assert.Equal(t, "card", res.Payment.Method)
	assert.NotEmpty(t, res.Payment.RawResponse)
	assert.Len(t, f.bookings.announced, 1)

	_, err = f.store.Get(context.Background(), c.OrderID)
	assert.ErrorIs(t, err, ErrCheckoutNotFound, "checkout is consumed")
}

func TestConfirmReplayCallsGatewayOnce(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)
	req := &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}

	first, err := f.service.Confirm(context.Background(), &a, req)
	require.NoError(t, err)
	second, err := f.service.Confirm(context.Background(), &a, req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, 1, f.gateway.confirms)
	assert.Len(t, f.bookings.announced, 1)
}

func TestConfirmReplayWithDifferentKeyConflicts(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)

	_, err := f.service.Confirm(context.Background(), &a, &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount})
	require.NoError(t, err)

	_, err = f.service.Confirm(context.Background(), &a, &ConfirmRequest{PaymentKey: "pk_2", OrderID: c.OrderID, Amount: c.Amount})
	assert.ErrorIs(t, err, ErrOrderConflict)

	_, err = f.service.Confirm(context.Background(), &a, &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount + 1})
	assert.ErrorIs(t, err, ErrOrderConflict)
}

func TestConfirmRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, req *ConfirmRequest, caller *access.Principal)
		want   error
	}{
		{"amount mismatch", func(f *fixture, req *ConfirmRequest, _ *access.Principal) { req.Amount-- }, ErrAmountMismatch},
		{"unknown order", func(f *fixture, req *ConfirmRequest, _ *access.Principal) { req.OrderID = "wall_missing" }, ErrCheckoutNotFound},
		{"other artist", func(f *fixture, req *ConfirmRequest, caller *access.Principal) { caller.UserID = uuid.New() }, ErrForbidden},
		{"space taken", func(f *fixture, _ *ConfirmRequest, _ *access.Principal) { f.bookings.taken = true }, booking.ErrSpaceUnavailable},
		{"gateway rejects", func(f *fixture, _ *ConfirmRequest, _ *access.Principal) {
			f.gateway.confirmErr = &paygate.Error{Status: 400, Code: "REJECT_CARD_COMPANY", Message: "card declined"}
		}, ErrGatewayRejected},
		{"gateway down", func(f *fixture, _ *ConfirmRequest, _ *access.Principal) {
			f.gateway.confirmErr = fmt.Errorf("%w: timeout", paygate.ErrUpstream)
		}, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			a := artist()
			c := f.checkout(t, a)
			req := &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}
			caller := a
			tt.mutate(f, req, &caller)

			_, err := f.service.Confirm(context.Background(), &caller, req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.repo.payments)
			assert.Empty(t, f.gateway.cancels)
		})
	}
}

func TestConfirmGatewayRejectionCarriesCode(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)
	f.gateway.confirmErr = &paygate.Error{Status: 400, Code: "REJECT_CARD_COMPANY", Message: "card declined"}

	_, err := f.service.Confirm(context.Background(), &a, &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount})

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "REJECT_CARD_COMPANY", gwErr.Code)
}

func TestConfirmCancelsPaymentWhenSpaceLost(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)
	f.repo.createErr = booking.ErrSpaceUnavailable

	_, err := f.service.Confirm(context.Background(), &a, &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount})

	assert.ErrorIs(t, err, booking.ErrSpaceUnavailable)
	assert.Equal(t, []string{"pk_1:" + cancelReasonTaken}, f.gateway.cancels)
	assert.Empty(t, f.bookings.announced)
}

func TestConfirmConcurrentRetryIsReplayedNotCancelled(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)
	req := &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}

	// The winning retry lands between our gateway call and our write.
	winner := &booking.Booking{ID: uuid.New(), ArtistID: a.UserID, Status: booking.StatusConfirmed}
	f.repo.onCreate = func() {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		f.repo.bookings[winner.ID] = winner
		f.repo.payments[req.OrderID] = &Payment{
			ID: uuid.New(), OrderID: req.OrderID, PaymentKey: req.PaymentKey,
			BookingID: winner.ID, ArtistID: a.UserID, Amount: req.Amount, Status: StatusConfirmed,
		}
		f.repo.onCreate = nil
	}

	res, err := f.service.Confirm(context.Background(), &a, req)
	require.NoError(t, err)

	assert.True(t, res.Replayed)
	assert.Equal(t, winner.ID, res.Booking.ID)
	assert.Empty(t, f.gateway.cancels)
}

func TestConfirmInlineReservationWithoutCheckout(t *testing.T) {
	f := newFixture()
	a := artist()
	spaceID := f.bookings.space.ID

	res, err := f.service.Confirm(context.Background(), &a, &ConfirmRequest{
		PaymentKey: "pk_inline",
		OrderID:    "wall_inline",
		Amount:     65000,
		SpaceID:    &spaceID,
		StartDate:  "2030-08-01",
		EndDate:    "2030-08-03",
	})
	require.NoError(t, err)
	assert.Equal(t, a.UserID, res.Booking.ArtistID)
	assert.Equal(t, int64(65000), res.Booking.TotalPrice)
}

func TestConfirmRedirectFlowUsesCheckoutIdentity(t *testing.T) {
	f := newFixture()
	a := artist()
	c := f.checkout(t, a)

	res, err := f.service.Confirm(context.Background(), nil, &ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount})
	require.NoError(t, err)
	assert.Equal(t, a.UserID, res.Booking.ArtistID)
}
