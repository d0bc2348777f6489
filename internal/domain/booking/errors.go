package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSpaceNotFound     = errors.New("space not found")
	ErrSpaceClosed       = errors.New("space is closed")
	ErrSpaceUnavailable  = errors.New("space is not available for the requested dates")
	ErrInvalidDateRange  = errors.New("start date is after end date")
	ErrStartInPast       = errors.New("start date is in the past")
	ErrPriceMismatch     = errors.New("total price does not match")
	ErrInvalidStatus     = errors.New("unknown booking status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStatusConflict    = errors.New("booking status changed concurrently")
	ErrForbidden         = errors.New("not allowed to act on this booking")
	ErrDuplicateOrder    = errors.New("booking for this order already exists")
	ErrLocationNotFound  = errors.New("location not found")
	ErrArtistNotFound    = errors.New("artist account not found")
)
