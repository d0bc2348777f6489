package location

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/pkg/imaging"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/storage"
)

// Service handles locations and their spaces
type Service struct {
	repo      Repository
	access    *access.Checker
	store     storage.Storage // nil when storage is not configured
	processor *imaging.Processor
}

// NewService creates location service
func NewService(repo Repository, checker *access.Checker, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{repo: repo, access: checker, store: store, processor: processor}
}

// CreateLocation creates a location managed by the caller
func (s *Service) CreateLocation(ctx context.Context, managerID uuid.UUID, req *CreateLocationRequest) (*Location, error) {
	l := &Location{
		ID:        uuid.New(),
		ManagerID: managerID,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
	}
	if req.Latitude != nil {
		l.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		l.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if req.Description != "" {
		l.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if err := s.repo.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetLocation returns a location with its spaces
func (s *Service) GetLocation(ctx context.Context, id uuid.UUID) (*Location, []*Space, error) {
	l, err := s.repo.GetLocation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, ErrLocationNotFound
	}

	spaces, err := s.repo.ListSpaces(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return l, spaces, nil
}

// ListLocations lists locations, optionally filtered by city
func (s *Service) ListLocations(ctx context.Context, filter ListFilter, limit, offset int) ([]*Location, int, error) {
	return s.repo.ListLocations(ctx, filter, limit, offset)
}

// ListMine lists the locations the caller manages
func (s *Service) ListMine(ctx context.Context, managerID uuid.UUID) ([]*Location, error) {
	return s.repo.ListByManager(ctx, managerID)
}

// CreateSpace adds a space to a location the caller manages
func (s *Service) CreateSpace(ctx context.Context, p access.Principal, locationID uuid.UUID, req *CreateSpaceRequest) (*Space, error) {
	if err := s.requireManager(ctx, p, locationID); err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = 1
	}
	space := &Space{
		ID:         uuid.New(),
		LocationID: locationID,
		Name:       req.Name,
		WidthCM:    req.WidthCM,
		HeightCM:   req.HeightCM,
		Capacity:   capacity,
		DailyPrice: req.DailyPrice,
	}
	if err := s.repo.CreateSpace(ctx, space); err != nil {
		return nil, err
	}
	return space, nil
}

// GetSpace returns a space with its location name and manager
func (s *Service) GetSpace(ctx context.Context, id uuid.UUID) (*SpaceWithLocation, error) {
	space, err := s.repo.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}
	return space, nil
}

// UpdateSpace applies a partial update; only the location's manager (or an admin) may do it
func (s *Service) UpdateSpace(ctx context.Context, p access.Principal, spaceID uuid.UUID, patch SpacePatch) (*Space, error) {
	if patch.Empty() {
		return nil, ErrNoChanges
	}

	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, p, space.LocationID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSpace(ctx, spaceID, patch)
	if err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Space updated",
		"space_id", spaceID.String(),
		"actor_id", p.UserID.String(),
		"is_closed", updated.IsClosed,
	)
	return updated, nil
}

// UploadSpaceImage normalises the photo, stores it and points the space at it
func (s *Service) UploadSpaceImage(ctx context.Context, p access.Principal, spaceID uuid.UUID, data []byte) (*Space, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	space, err := s.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, p, space.LocationID); err != nil {
		return nil, err
	}

	img, err := s.processor.Process(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	key := fmt.Sprintf("spaces/%s/%s.jpg", spaceID, uuid.New())
	if err := s.store.Put(ctx, key, bytes.NewReader(img.Data), imaging.ContentType); err != nil {
		return nil, fmt.Errorf("store space image: %w", err)
	}

	url := s.store.GetURL(key)
	updated, err := s.repo.UpdateSpace(ctx, spaceID, SpacePatch{ImageURL: &url})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.LogWarn(ctx, "Failed to remove orphaned space image", "key", key, "error", delErr.Error())
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) requireManager(ctx context.Context, p access.Principal, locationID uuid.UUID) error {
	ok, err := s.access.CanManageLocation(ctx, p, locationID)
	if err != nil {
		if errors.Is(err, access.ErrLocationNotFound) {
			return ErrLocationNotFound
		}
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
