package location

import (
	"time"

	"github.com/google/uuid"
)

// CreateLocationRequest for POST /locations
type CreateLocationRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Address     string   `json:"address" validate:"required,max=300"`
	City        string   `json:"city" validate:"required,max=100"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
}

// CreateSpaceRequest for POST /locations/{id}/spaces
type CreateSpaceRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	WidthCM    int    `json:"width_cm" validate:"required,gt=0"`
	HeightCM   int    `json:"height_cm" validate:"required,gt=0"`
	Capacity   int    `json:"capacity" validate:"omitempty,gt=0"`
	DailyPrice int64  `json:"daily_price" validate:"gte=0"`
}

// UpdateSpaceRequest for PATCH /spaces/{id}; absent fields are left alone
type UpdateSpaceRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	WidthCM    *int    `json:"width_cm" validate:"omitempty,gt=0"`
	HeightCM   *int    `json:"height_cm" validate:"omitempty,gt=0"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gt=0"`
	DailyPrice *int64  `json:"daily_price" validate:"omitempty,gte=0"`
	IsClosed   *bool   `json:"is_closed"`
	ImageURL   *string `json:"image_url" validate:"omitempty,url,max=2000"`
}

func (r *UpdateSpaceRequest) patch() SpacePatch {
	return SpacePatch{
		Name:       r.Name,
		WidthCM:    r.WidthCM,
		HeightCM:   r.HeightCM,
		Capacity:   r.Capacity,
		DailyPrice: r.DailyPrice,
		IsClosed:   r.IsClosed,
		ImageURL:   r.ImageURL,
	}
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID          uuid.UUID       `json:"id"`
	ManagerID   uuid.UUID       `json:"manager_id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Description string          `json:"description,omitempty"`
	Spaces      []SpaceResponse `json:"spaces,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SpaceResponse represents a space in API responses
type SpaceResponse struct {
	ID         uuid.UUID `json:"id"`
	LocationID uuid.UUID `json:"location_id"`
	Name       string    `json:"name"`
	WidthCM    int       `json:"width_cm"`
	HeightCM   int       `json:"height_cm"`
	Capacity   int       `json:"capacity"`
	DailyPrice int64     `json:"daily_price"`
	IsClosed   bool      `json:"is_closed"`
	ImageURL   string    `json:"image_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LocationResponseFromEntity converts a location and optional spaces
func LocationResponseFromEntity(l *Location, spaces []*Space) LocationResponse {
	resp := LocationResponse{
		ID:          l.ID,
		ManagerID:   l.ManagerID,
		Name:        l.Name,
		Address:     l.Address,
		City:        l.City,
		Description: l.Description.String,
		CreatedAt:   l.CreatedAt,
	}
	if l.Latitude.Valid {
		resp.Latitude = &l.Latitude.Float64
	}
	if l.Longitude.Valid {
		resp.Longitude = &l.Longitude.Float64
	}
	for _, s := range spaces {
		resp.Spaces = append(resp.Spaces, SpaceResponseFromEntity(s))
	}
	return resp
}

// SpaceResponseFromEntity converts a space
func SpaceResponseFromEntity(s *Space) SpaceResponse {
	return SpaceResponse{
		ID:         s.ID,
		LocationID: s.LocationID,
		Name:       s.Name,
		WidthCM:    s.WidthCM,
		HeightCM:   s.HeightCM,
		Capacity:   s.Capacity,
		DailyPrice: s.DailyPrice,
		IsClosed:   s.IsClosed,
		ImageURL:   s.ImageURL.String,
		UpdatedAt:  s.UpdatedAt,
	}
}
