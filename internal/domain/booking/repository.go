package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wallspace/wallspace-api/internal/pkg/database"
)

// Repository defines booking data access
type Repository interface {
	// Reserve inserts b unless the space is closed or already held for an
	// overlapping range. The check and the insert share one transaction.
	Reserve(ctx context.Context, b *Booking) error
	HasOverlap(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByOrderID(ctx context.Context, orderID string) (*Booking, error)
	ListByArtist(ctx context.Context, artistID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error)
	ListCompletable(ctx context.Context, before time.Time, limit int) ([]*Booking, error)

	// Transition moves a booking from change.FromStatus to change.ToStatus
	// only if it is still in FromStatus, and records the change.
	Transition(ctx context.Context, change *StatusChange) (*Booking, error)
	History(ctx context.Context, bookingID uuid.UUID) ([]*StatusChange, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, artist_id, location_id, space_id, artwork_id, start_date, end_date, status,
	total_price, rejection_reason, payment_key, order_id, created_at, updated_at`

const overlapPredicate = `space_id = $1
	AND status = ANY($2)
	AND start_date <= $4
	AND end_date >= $3
	AND ($5::uuid IS NULL OR id <> $5)`

func (r *repository) Reserve(ctx context.Context, b *Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := ReserveTx(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// ReserveTx runs the reserve-or-fail sequence inside tx: lock the space row,
// look for an active overlapping booking, insert. Callers that need to write
// more rows atomically with the booking (payments) pass their own tx.
func ReserveTx(ctx context.Context, tx *sqlx.Tx, b *Booking) error {
	var isClosed bool
	err := tx.QueryRowxContext(ctx, `SELECT is_closed FROM spaces WHERE id = $1 FOR UPDATE`, b.SpaceID).Scan(&isClosed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpaceNotFound
		}
		return fmt.Errorf("lock space: %w", err)
	}
	if isClosed {
		return ErrSpaceClosed
	}

	var taken bool
	err = tx.QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE `+overlapPredicate+`)`,
		b.SpaceID, pq.Array(ActiveStatuses), b.StartDate, b.EndDate, uuid.NullUUID{},
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if taken {
		return ErrSpaceUnavailable
	}

	query := `
		INSERT INTO bookings (id, artist_id, location_id, space_id, artwork_id, start_date, end_date,
			status, total_price, payment_key, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		b.ID, b.ArtistID, b.LocationID, b.SpaceID, b.ArtworkID, b.StartDate, b.EndDate,
		b.Status, b.TotalPrice, b.PaymentKey, b.OrderID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// mapWriteError turns constraint violations on bookings into domain errors
func mapWriteError(err error) error {
	switch {
	case database.IsViolation(err, database.SQLStateExclusionViolation, ""):
		return ErrSpaceUnavailable
	case database.IsViolation(err, database.SQLStateUniqueViolation, "bookings_order_id_key"),
		database.IsViolation(err, database.SQLStateUniqueViolation, "bookings_payment_key_key"):
		return ErrDuplicateOrder
	case database.IsViolation(err, database.SQLStateCheckViolation, "bookings_valid_date_range"):
		return ErrInvalidDateRange
	case database.IsViolation(err, database.SQLStateForeignKeyViolation, "bookings_artist_id_fkey"):
		return ErrArtistNotFound
	case database.IsViolation(err, database.SQLStateForeignKeyViolation, "bookings_location_id_fkey"):
		return ErrLocationNotFound
	case database.IsViolation(err, database.SQLStateForeignKeyViolation, "bookings_space_id_fkey"):
		return ErrSpaceNotFound
	}
	return fmt.Errorf("insert booking: %w", err)
}

func (r *repository) HasOverlap(ctx context.Context, spaceID uuid.UUID, start, end time.Time, excludeID uuid.NullUUID) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE `+overlapPredicate+`)`,
		spaceID, pq.Array(ActiveStatuses), start, end, excludeID,
	)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return taken, nil
}

// GetByID returns nil, nil when absent
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByOrderID returns nil, nil when absent
func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE order_id = $1`, orderID)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Booking, error) {
	var b Booking
	if err := r.db.GetContext(ctx, &b, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByArtist(ctx context.Context, artistID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, "artist_id", artistID, filter, limit, offset)
}

func (r *repository) ListByLocation(ctx context.Context, locationID uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error) {
	return r.list(ctx, "location_id", locationID, filter, limit, offset)
}

// list pages bookings owned by column = id; column is never user input
func (r *repository) list(ctx context.Context, column string, id uuid.UUID, filter ListFilter, limit, offset int) ([]*Booking, int, error) {
	where := `WHERE ` + column + ` = $1 AND ($2 = '' OR status = $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings `+where, id, string(filter.Status)); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	var items []*Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings ` + where + ` ORDER BY start_date DESC, created_at DESC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &items, query, id, string(filter.Status), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return items, total, nil
}

// ListCompletable returns confirmed bookings whose end date is before the given day
func (r *repository) ListCompletable(ctx context.Context, before time.Time, limit int) ([]*Booking, error) {
	var items []*Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = $1 AND end_date < $2
		ORDER BY end_date
		LIMIT $3`
	if err := r.db.SelectContext(ctx, &items, query, StatusConfirmed, before, limit); err != nil {
		return nil, fmt.Errorf("list completable bookings: %w", err)
	}
	return items, nil
}

func (r *repository) Transition(ctx context.Context, change *StatusChange) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	update := `
		UPDATE bookings
		SET status = $3,
			rejection_reason = COALESCE($4, rejection_reason),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns

	var b Booking
	err = tx.QueryRowxContext(ctx, update,
		change.BookingID, change.FromStatus, change.ToStatus, change.Reason,
	).StructScan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	insert := `
		INSERT INTO booking_status_changes (id, booking_id, from_status, to_status, actor_id, actor_role, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = tx.QueryRowxContext(ctx, insert,
		change.ID, change.BookingID, change.FromStatus, change.ToStatus, change.ActorID, change.ActorRole, change.Reason,
	).Scan(&change.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record status change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &b, nil
}

func (r *repository) History(ctx context.Context, bookingID uuid.UUID) ([]*StatusChange, error) {
	var items []*StatusChange
	query := `
		SELECT id, booking_id, from_status, to_status, actor_id, actor_role, reason, created_at
		FROM booking_status_changes
		WHERE booking_id = $1
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &items, query, bookingID); err != nil {
		return nil, fmt.Errorf("booking history: %w", err)
	}
	return items, nil
}
