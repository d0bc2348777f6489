package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/pkg/database"
)

// Repository defines location and space data access
type Repository interface {
	CreateLocation(ctx context.Context, l *Location) error
	GetLocation(ctx context.Context, id uuid.UUID) (*Location, error)
	ListLocations(ctx context.Context, filter ListFilter, limit, offset int) ([]*Location, int, error)
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]*Location, error)
	ManagerOf(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error)

	CreateSpace(ctx context.Context, s *Space) error
	GetSpace(ctx context.Context, id uuid.UUID) (*SpaceWithLocation, error)
	ListSpaces(ctx context.Context, locationID uuid.UUID) ([]*Space, error)
	UpdateSpace(ctx context.Context, id uuid.UUID, patch SpacePatch) (*Space, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates location repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const locationColumns = `id, manager_id, name, address, city, latitude, longitude, description, created_at, updated_at`

const spaceColumns = `id, location_id, name, width_cm, height_cm, capacity, daily_price, is_closed, image_url, created_at, updated_at`

func (r *repository) CreateLocation(ctx context.Context, l *Location) error {
	query := `
		INSERT INTO locations (id, manager_id, name, address, city, latitude, longitude, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		l.ID, l.ManagerID, l.Name, l.Address, l.City, l.Latitude, l.Longitude, l.Description,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if database.IsViolation(err, database.SQLStateForeignKeyViolation, "") {
			return fmt.Errorf("create location: unknown manager: %w", err)
		}
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// GetLocation returns nil, nil when absent
func (r *repository) GetLocation(ctx context.Context, id uuid.UUID) (*Location, error) {
	var l Location
	err := r.db.GetContext(ctx, &l, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListLocations(ctx context.Context, filter ListFilter, limit, offset int) ([]*Location, int, error) {
	where := `WHERE ($1 = '' OR LOWER(city) = LOWER($1))`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM locations `+where, filter.City); err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}

	var locations []*Location
	query := `SELECT ` + locationColumns + ` FROM locations ` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &locations, query, filter.City, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	return locations, total, nil
}

func (r *repository) ListByManager(ctx context.Context, managerID uuid.UUID) ([]*Location, error) {
	var locations []*Location
	err := r.db.SelectContext(ctx, &locations,
		`SELECT `+locationColumns+` FROM locations WHERE manager_id = $1 ORDER BY created_at DESC`, managerID)
	if err != nil {
		return nil, fmt.Errorf("list manager locations: %w", err)
	}
	return locations, nil
}

// ManagerOf implements access.LocationManagers
func (r *repository) ManagerOf(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	var managerID uuid.UUID
	err := r.db.GetContext(ctx, &managerID, `SELECT manager_id FROM locations WHERE id = $1`, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, access.ErrLocationNotFound
		}
		return uuid.Nil, err
	}
	return managerID, nil
}

func (r *repository) CreateSpace(ctx context.Context, s *Space) error {
	query := `
		INSERT INTO spaces (id, location_id, name, width_cm, height_cm, capacity, daily_price, is_closed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.LocationID, s.Name, s.WidthCM, s.HeightCM, s.Capacity, s.DailyPrice, s.IsClosed,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if database.IsViolation(err, database.SQLStateForeignKeyViolation, "") {
			return ErrLocationNotFound
		}
		return fmt.Errorf("create space: %w", err)
	}
	return nil
}

// GetSpace returns the space with its location's name and manager, nil when absent
func (r *repository) GetSpace(ctx context.Context, id uuid.UUID) (*SpaceWithLocation, error) {
	query := `
		SELECT s.id, s.location_id, s.name, s.width_cm, s.height_cm, s.capacity, s.daily_price,
		       s.is_closed, s.image_url, s.created_at, s.updated_at,
		       l.name AS location_name, l.manager_id
		FROM spaces s
		JOIN locations l ON l.id = s.location_id
		WHERE s.id = $1
	`
	var s SpaceWithLocation
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListSpaces(ctx context.Context, locationID uuid.UUID) ([]*Space, error) {
	var spaces []*Space
	err := r.db.SelectContext(ctx, &spaces,
		`SELECT `+spaceColumns+` FROM spaces WHERE location_id = $1 ORDER BY name`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

// UpdateSpace applies the non-nil fields of patch and returns the stored row
func (r *repository) UpdateSpace(ctx context.Context, id uuid.UUID, patch SpacePatch) (*Space, error) {
	query := `
		UPDATE spaces SET
			name        = COALESCE($2, name),
			width_cm    = COALESCE($3, width_cm),
			height_cm   = COALESCE($4, height_cm),
			capacity    = COALESCE($5, capacity),
			daily_price = COALESCE($6, daily_price),
			is_closed   = COALESCE($7, is_closed),
			image_url   = COALESCE($8, image_url),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + spaceColumns

	var s Space
	err := r.db.QueryRowxContext(ctx, query, id,
		patch.Name, patch.WidthCM, patch.HeightCM, patch.Capacity, patch.DailyPrice, patch.IsClosed, patch.ImageURL,
	).StructScan(&s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("update space: %w", err)
	}
	return &s, nil
}
