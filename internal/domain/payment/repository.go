package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/pkg/database"
)

// Repository defines payment data access
type Repository interface {
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	// CreateWithBooking reserves b and records p in one transaction
	CreateWithBooking(ctx context.Context, b *booking.Booking, p *Payment) error
	ListByArtist(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*Payment, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, order_id, payment_key, booking_id, artist_id, amount, status, method, raw_response, created_at, updated_at`

// GetByOrderID returns nil, nil when absent
func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateWithBooking(ctx context.Context, b *booking.Booking, p *Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := booking.ReserveTx(ctx, tx, b); err != nil {
		if errors.Is(err, booking.ErrDuplicateOrder) {
			return ErrDuplicateOrder
		}
		return err
	}

	query := `
		INSERT INTO payments (id, order_id, payment_key, booking_id, artist_id, amount, status, method, raw_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		p.ID, p.OrderID, p.PaymentKey, p.BookingID, p.ArtistID, p.Amount, p.Status, p.Method, p.RawResponse,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsViolation(err, database.SQLStateUniqueViolation, "payments_order_id_key") ||
			database.IsViolation(err, database.SQLStateUniqueViolation, "payments_payment_key_key") {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	return tx.Commit()
}

func (r *repository) ListByArtist(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE artist_id = $1`, artistID); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	var items []*Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE artist_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &items, query, artistID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return items, total, nil
}
