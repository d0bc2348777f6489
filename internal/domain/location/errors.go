package location

import "errors"

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrSpaceNotFound    = errors.New("space not found")
	ErrForbidden        = errors.New("not the manager of this location")
	ErrNoChanges        = errors.New("no fields to update")
	ErrInvalidImage     = errors.New("invalid image")
	ErrStorageDisabled  = errors.New("image storage not configured")
)
