package location

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Location is a venue (usually a cafe) run by a manager
type Location struct {
	ID          uuid.UUID       `db:"id"`
	ManagerID   uuid.UUID       `db:"manager_id"`
	Name        string          `db:"name"`
	Address     string          `db:"address"`
	City        string          `db:"city"`
	Latitude    sql.NullFloat64 `db:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude"`
	Description sql.NullString  `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Space is a bookable wall at a location
type Space struct {
	ID         uuid.UUID      `db:"id"`
	LocationID uuid.UUID      `db:"location_id"`
	Name       string         `db:"name"`
	WidthCM    int            `db:"width_cm"`
	HeightCM   int            `db:"height_cm"`
	Capacity   int            `db:"capacity"`
	DailyPrice int64          `db:"daily_price"`
	IsClosed   bool           `db:"is_closed"`
	ImageURL   sql.NullString `db:"image_url"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// SpaceWithLocation is a space joined with the fields of its location that
// bookings and notifications need
type SpaceWithLocation struct {
	Space
	LocationName string    `db:"location_name"`
	ManagerID    uuid.UUID `db:"manager_id"`
}

// SpacePatch holds the optional fields of a space update; nil means unchanged
type SpacePatch struct {
	Name       *string
	WidthCM    *int
	HeightCM   *int
	Capacity   *int
	DailyPrice *int64
	IsClosed   *bool
	ImageURL   *string
}

// Empty reports whether the patch changes nothing
func (p SpacePatch) Empty() bool {
	return p.Name == nil && p.WidthCM == nil && p.HeightCM == nil && p.Capacity == nil &&
		p.DailyPrice == nil && p.IsClosed == nil && p.ImageURL == nil
}

// ListFilter narrows the public location list
type ListFilter struct {
	City string
}
