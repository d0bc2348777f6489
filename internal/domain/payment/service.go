package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/domain/location"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/metrics"
	"github.com/wallspace/wallspace-api/internal/pkg/paygate"
)

const (
	orderIDPrefix      = "wall_"
	cancelReasonTaken  = "space unavailable"
	defaultCheckoutTTL = 30 * time.Minute
)

// Gateway is the subset of the payment gateway client the service calls
type Gateway interface {
	Confirm(ctx context.Context, req paygate.ConfirmRequest) (*paygate.Payment, error)
	Cancel(ctx context.Context, paymentKey, reason string) error
}

// Bookings validates, prices and announces reservations
type Bookings interface {
	Prepare(ctx context.Context, artistID uuid.UUID, req *booking.CreateBookingRequest) (*booking.Booking, *location.SpaceWithLocation, error)
	CheckAvailability(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error)
	AnnounceCreated(ctx context.Context, b *booking.Booking, space *location.SpaceWithLocation)
}

// BookingReader loads bookings by id; nil, nil when absent
type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

// Result of a confirm call. Replayed is set when the order had already been paid.
type Result struct {
	Booking  *booking.Booking
	Payment  *Payment
	Replayed bool
}

// Service runs checkout and the idempotent confirm flow
type Service struct {
	repo        Repository
	checkouts   CheckoutStore
	gateway     Gateway
	bookings    Bookings
	reader      BookingReader
	checkoutTTL time.Duration
	now         func() time.Time
}

// NewService creates payment service
func NewService(repo Repository, checkouts CheckoutStore, gateway Gateway, bookings Bookings, reader BookingReader, checkoutTTL time.Duration) *Service {
	if checkoutTTL <= 0 {
		checkoutTTL = defaultCheckoutTTL
	}
	return &Service{
		repo:        repo,
		checkouts:   checkouts,
		gateway:     gateway,
		bookings:    bookings,
		reader:      reader,
		checkoutTTL: checkoutTTL,
		now:         time.Now,
	}
}

func newOrderID() string {
	return orderIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Checkout prices a reservation and parks it under a fresh order id until the
// client-side payment completes. Nothing is reserved yet.
func (s *Service) Checkout(ctx context.Context, p access.Principal, req *CheckoutRequest) (*Checkout, error) {
	if p.Role != access.RoleArtist && !p.IsAdmin() {
		return nil, ErrForbidden
	}

	b, space, err := s.bookings.Prepare(ctx, p.UserID, req.bookingRequest())
	if err != nil {
		return nil, err
	}

	available, err := s.bookings.CheckAvailability(ctx, b.SpaceID, b.StartDate, b.EndDate, uuid.NullUUID{})
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, booking.ErrSpaceUnavailable
	}

	c := &Checkout{
		OrderID:    newOrderID(),
		ArtistID:   p.UserID,
		SpaceID:    b.SpaceID,
		LocationID: b.LocationID,
		ArtworkID:  req.ArtworkID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Amount:     b.TotalPrice,
		OrderName:  fmt.Sprintf("%s / %s (%s ~ %s)", space.LocationName, space.Name, req.StartDate, req.EndDate),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.checkouts.Save(ctx, c, s.checkoutTTL); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Checkout created",
		"order_id", c.OrderID,
		"space_id", c.SpaceID.String(),
		"amount", c.Amount,
	)
	return c, nil
}

// ExpiresAt returns when a checkout created now stops being confirmable
func (s *Service) ExpiresAt(c *Checkout) time.Time {
	return c.CreatedAt.Add(s.checkoutTTL)
}

// Confirm approves the payment at the gateway and books the space for it.
// caller is nil on the redirect flow, where the checkout is the only identity.
// Retrying an order that already succeeded returns the same booking without
// calling the gateway again.
func (s *Service) Confirm(ctx context.Context, caller *access.Principal, req *ConfirmRequest) (*Result, error) {
	existing, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if existing != nil {
		return s.replay(ctx, caller, req, existing)
	}

	c, err := s.resolveCheckout(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	b, space, err := s.bookings.Prepare(ctx, c.ArtistID, &booking.CreateBookingRequest{
		SpaceID:   c.SpaceID,
		ArtworkID: c.ArtworkID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	})
	if err != nil {
		return nil, err
	}
	if req.Amount != b.TotalPrice {
		metrics.RecordPaymentConfirmation("rejected")
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrAmountMismatch, b.TotalPrice, req.Amount)
	}

	available, err := s.bookings.CheckAvailability(ctx, b.SpaceID, b.StartDate, b.EndDate, uuid.NullUUID{})
	if err != nil {
		return nil, err
	}
	if !available {
		metrics.RecordBookingConflict()
		return nil, booking.ErrSpaceUnavailable
	}

	paid, err := s.gateway.Confirm(ctx, paygate.ConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		return nil, s.gatewayError(ctx, req, err)
	}

	b.Status = booking.StatusConfirmed
	b.PaymentKey = sql.NullString{String: req.PaymentKey, Valid: true}
	b.OrderID = sql.NullString{String: req.OrderID, Valid: true}

	pay := &Payment{
		ID:          uuid.New(),
		OrderID:     req.OrderID,
		PaymentKey:  req.PaymentKey,
		BookingID:   b.ID,
		ArtistID:    b.ArtistID,
		Amount:      req.Amount,
		Status:      StatusConfirmed,
		Method:      paid.Method,
		RawResponse: JSONRawMessage(paid.Raw),
	}

	if err := s.repo.CreateWithBooking(ctx, b, pay); err != nil {
		return s.recoverFailedWrite(ctx, caller, req, err)
	}

	if err := s.checkouts.Delete(ctx, req.OrderID); err != nil {
		logger.LogWarn(ctx, "Failed to delete checkout", "order_id", req.OrderID, "error", err.Error())
	}

	s.bookings.AnnounceCreated(ctx, b, space)
	metrics.RecordPaymentConfirmation("confirmed")
	logger.LogInfo(ctx, "Payment confirmed",
		"order_id", req.OrderID,
		"booking_id", b.ID.String(),
		"amount", req.Amount,
	)

	return &Result{Booking: b, Payment: pay}, nil
}

// resolveCheckout finds the reservation the payment is for. Inline fields are
// a fallback for clients that did not go through checkout.
func (s *Service) resolveCheckout(ctx context.Context, caller *access.Principal, req *ConfirmRequest) (*Checkout, error) {
	c, err := s.checkouts.Get(ctx, req.OrderID)
	switch {
	case err == nil:
		if caller != nil && caller.UserID != c.ArtistID && !caller.IsAdmin() {
			return nil, ErrForbidden
		}
		return c, nil
	case !errors.Is(err, ErrCheckoutNotFound):
		return nil, err
	}

	if caller == nil || !req.hasInlineReservation() {
		return nil, ErrCheckoutNotFound
	}
	if caller.Role != access.RoleArtist && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return &Checkout{
		OrderID:   req.OrderID,
		ArtistID:  caller.UserID,
		SpaceID:   *req.SpaceID,
		ArtworkID: req.ArtworkID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Amount:    req.Amount,
	}, nil
}

// replay answers a retried confirm from the stored payment
func (s *Service) replay(ctx context.Context, caller *access.Principal, req *ConfirmRequest, p *Payment) (*Result, error) {
	if p.PaymentKey != req.PaymentKey || p.Amount != req.Amount {
		metrics.RecordPaymentConfirmation("rejected")
		return nil, ErrOrderConflict
	}
	if caller != nil && caller.UserID != p.ArtistID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	b, err := s.reader.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking for order %s: %w", p.OrderID, err)
	}
	if b == nil {
		return nil, fmt.Errorf("booking %s of order %s: %w", p.BookingID, p.OrderID, booking.ErrBookingNotFound)
	}

	metrics.RecordPaymentConfirmation("replayed")
	logger.LogDebug(ctx, "Payment confirm replayed", "order_id", p.OrderID, "booking_id", b.ID.String())
	return &Result{Booking: b, Payment: p, Replayed: true}, nil
}

// recoverFailedWrite handles a failed reservation after the gateway took the
// money: a concurrent retry of the same order may have won, otherwise the
// payment is cancelled at the gateway.
func (s *Service) recoverFailedWrite(ctx context.Context, caller *access.Principal, req *ConfirmRequest, writeErr error) (*Result, error) {
	existing, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err == nil && existing != nil && existing.PaymentKey == req.PaymentKey {
		return s.replay(ctx, caller, req, existing)
	}
	if errors.Is(writeErr, booking.ErrSpaceUnavailable) {
		metrics.RecordBookingConflict()
	}
	metrics.RecordPaymentConfirmation("failed")

	if cancelErr := s.gateway.Cancel(ctx, req.PaymentKey, cancelReasonTaken); cancelErr != nil {
		logger.LogError(ctx, cancelErr, "Failed to cancel payment after reservation failure",
			"order_id", req.OrderID,
			"payment_key", req.PaymentKey,
		)
	} else {
		logger.LogWarn(ctx, "Payment cancelled after reservation failure",
			"order_id", req.OrderID,
			"reason", writeErr.Error(),
		)
	}
	if errors.Is(writeErr, ErrDuplicateOrder) {
		return nil, ErrOrderConflict
	}
	return nil, writeErr
}

func (s *Service) gatewayError(ctx context.Context, req *ConfirmRequest, err error) error {
	var gwErr *paygate.Error
	if errors.As(err, &gwErr) {
		metrics.RecordPaymentConfirmation("rejected")
		logger.LogWarn(ctx, "Payment rejected by gateway",
			"order_id", req.OrderID,
			"gateway_code", gwErr.Code,
		)
		return &GatewayError{Code: gwErr.Code, Message: gwErr.Message}
	}

	metrics.RecordPaymentConfirmation("failed")
	if errors.Is(err, paygate.ErrUpstream) {
		return errors.Join(ErrUpstream, err)
	}
	return err
}

// ListMine returns the caller's payments, newest first
func (s *Service) ListMine(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.repo.ListByArtist(ctx, artistID, limit, offset)
}
