package location

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/errorhandler"
	"github.com/wallspace/wallspace-api/internal/pkg/pagination"
	"github.com/wallspace/wallspace-api/internal/pkg/response"
	"github.com/wallspace/wallspace-api/internal/pkg/storage"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// Handler handles location and space HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates location handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /locations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	l, err := h.service.CreateLocation(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "create_location", err)
		return
	}

	response.Created(w, LocationResponseFromEntity(l, nil))
}

// List handles GET /locations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	filter := ListFilter{City: strings.TrimSpace(r.URL.Query().Get("city"))}

	items, total, err := h.service.ListLocations(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, r, "list_locations", err)
		return
	}

	out := make([]LocationResponse, 0, len(items))
	for _, l := range items {
		out = append(out, LocationResponseFromEntity(l, nil))
	}
	response.WithMeta(w, out, response.NewMeta(total, page.Page, page.Limit))
}

// ListMine handles GET /locations/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, "list_my_locations", err)
		return
	}

	out := make([]LocationResponse, 0, len(items))
	for _, l := range items {
		out = append(out, LocationResponseFromEntity(l, nil))
	}
	response.OK(w, out)
}

// Get handles GET /locations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	l, spaces, err := h.service.GetLocation(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get_location", err)
		return
	}

	response.OK(w, LocationResponseFromEntity(l, spaces))
}

// CreateSpace handles POST /locations/{id}/spaces
func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	locationID, ok := parseID(w, r)
	if !ok {
		return
	}

	var req CreateSpaceRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	space, err := h.service.CreateSpace(r.Context(), middleware.GetPrincipal(r.Context()), locationID, &req)
	if err != nil {
		h.writeError(w, r, "create_space", err)
		return
	}

	response.Created(w, SpaceResponseFromEntity(space))
}

// GetSpace handles GET /spaces/{id}
func (h *Handler) GetSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	space, err := h.service.GetSpace(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get_space", err)
		return
	}

	response.OK(w, SpaceResponseFromEntity(&space.Space))
}

// UpdateSpace handles PATCH /spaces/{id}
func (h *Handler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateSpaceRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	space, err := h.service.UpdateSpace(r.Context(), middleware.GetPrincipal(r.Context()), id, req.patch())
	if err != nil {
		h.writeError(w, r, "update_space", err)
		return
	}

	response.OK(w, SpaceResponseFromEntity(space))
}

// UploadImage handles POST /spaces/{id}/image (multipart field "file")
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, _, err := storage.ReadImage(file, storage.MaxImageSize)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds 10MB")
		case errors.Is(err, storage.ErrInvalidMimeType):
			response.BadRequest(w, "Only JPEG, PNG and GIF images are accepted")
		case errors.Is(err, storage.ErrEmptyFile):
			response.BadRequest(w, "File is empty")
		default:
			errorhandler.Internal(r.Context(), w, "location.read_image", err)
		}
		return
	}

	space, err := h.service.UploadSpaceImage(r.Context(), middleware.GetPrincipal(r.Context()), id, data)
	if err != nil {
		h.writeError(w, r, "upload_space_image", err)
		return
	}

	response.OK(w, SpaceResponseFromEntity(space))
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
	case errors.Is(err, ErrLocationNotFound):
		response.NotFound(w, "Location not found")
	case errors.Is(err, ErrSpaceNotFound):
		response.NotFound(w, "Space not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "You do not manage this location")
	case errors.Is(err, ErrNoChanges):
		response.BadRequest(w, "No fields to update")
	case errors.Is(err, ErrInvalidImage):
		response.BadRequest(w, "Image could not be decoded")
	case errors.Is(err, ErrStorageDisabled):
		response.ServiceUnavailable(w, "Image uploads are not configured")
	default:
		errorhandler.Internal(r.Context(), w, "location."+op, err)
	}
}
