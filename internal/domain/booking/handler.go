package booking

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/errorhandler"
	"github.com/wallspace/wallspace-api/internal/pkg/pagination"
	"github.com/wallspace/wallspace-api/internal/pkg/response"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Availability handles GET /spaces/{id}/availability
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := parseID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" || endStr == "" {
		response.ValidationError(w, map[string]string{"start_date": "start_date and end_date are required"})
		return
	}
	start, end, err := ParseRange(startStr, endStr)
	if err != nil {
		h.writeError(w, r, "availability", err)
		return
	}

	var exclude uuid.NullUUID
	if raw := q.Get("exclude_booking_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid exclude_booking_id")
			return
		}
		exclude = uuid.NullUUID{UUID: id, Valid: true}
	}

	available, err := h.service.CheckAvailability(r.Context(), spaceID, start, end, exclude)
	if err != nil {
		h.writeError(w, r, "availability", err)
		return
	}

	resp := AvailabilityResponse{SpaceID: spaceID, StartDate: startStr, EndDate: endStr, Available: available}
	if available {
		if quote, err := h.service.Quote(r.Context(), spaceID, start, end); err == nil {
			resp.Quote = quote
		}
	}
	response.OK(w, resp)
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.Create(r.Context(), middleware.GetPrincipal(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}

	response.Created(w, BookingResponseFromEntity(b))
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		h.writeError(w, r, "get", err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// History handles GET /bookings/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	changes, err := h.service.History(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		h.writeError(w, r, "history", err)
		return
	}

	out := make([]StatusChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, statusChangeResponse(c))
	}
	response.OK(w, out)
}

// Transition handles PATCH /bookings/{id}
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.Transition(r.Context(), middleware.GetPrincipal(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, "transition", err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// ListMine handles GET /bookings/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}

	items, total, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()), filter, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, r, "list_my", err)
		return
	}

	response.WithMeta(w, toResponses(items), response.NewMeta(total, page.Page, page.Limit))
}

// ListForLocation handles GET /locations/{id}/bookings
func (h *Handler) ListForLocation(w http.ResponseWriter, r *http.Request) {
	locationID, ok := parseID(w, r)
	if !ok {
		return
	}
	page := pagination.FromRequest(r)
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}

	items, total, err := h.service.ListForLocation(r.Context(), middleware.GetPrincipal(r.Context()), locationID, filter, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, r, "list_location", err)
		return
	}

	response.WithMeta(w, toResponses(items), response.NewMeta(total, page.Page, page.Limit))
}

func toResponses(items []*Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, BookingResponseFromEntity(b))
	}
	return out
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrSpaceNotFound):
		response.NotFound(w, "Space not found")
	case errors.Is(err, ErrLocationNotFound):
		response.NotFound(w, "Location not found")
	case errors.Is(err, ErrArtistNotFound):
		response.NotFound(w, "Artist account not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You are not allowed to act on this booking")
	case errors.Is(err, ErrInvalidDateRange):
		response.ValidationError(w, map[string]string{"end_date": "end_date must not be before start_date"})
	case errors.Is(err, ErrStartInPast):
		response.ValidationError(w, map[string]string{"start_date": "start_date must not be in the past"})
	case errors.Is(err, ErrPriceMismatch):
		response.ValidationError(w, map[string]string{"total_price": "total_price does not match the current price"})
	case errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, "Unknown booking status")
	case errors.Is(err, ErrSpaceClosed):
		response.Conflict(w, "Space is closed for bookings")
	case errors.Is(err, ErrSpaceUnavailable):
		response.Conflict(w, "Space is already booked for these dates")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "Status change not allowed from the current status")
	case errors.Is(err, ErrStatusConflict):
		response.Conflict(w, "Booking was modified concurrently, reload and retry")
	case errors.Is(err, ErrDuplicateOrder):
		response.Conflict(w, "A booking for this order already exists")
	default:
		errorhandler.Internal(r.Context(), w, "booking."+op, err)
	}
}
