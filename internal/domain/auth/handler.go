package auth

import (
	"errors"
	"net/http"

	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/errorhandler"
	"github.com/wallspace/wallspace-api/internal/pkg/response"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}

	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, "refresh", err)
		return
	}

	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		errorhandler.Internal(r.Context(), w, "logout", err)
		return
	}

	response.NoContent(w)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, "me", err)
		return
	}

	response.OK(w, u)
}

// Social handles POST /auth/social
func (h *Handler) Social(w http.ResponseWriter, r *http.Request) {
	var req SocialLoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.SocialLogin(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "social_login", err)
		return
	}

	response.OK(w, result)
}

// LinkIdentity handles POST /auth/identities
func (h *Handler) LinkIdentity(w http.ResponseWriter, r *http.Request) {
	var req LinkIdentityRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.LinkIdentity(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "link_identity", err)
		return
	}

	response.Created(w, result)
}

// ListIdentities handles GET /auth/identities
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListIdentities(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "list_identities", err)
		return
	}

	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Conflict(w, "Email already registered")
	case errors.Is(err, ErrInvalidRole):
		response.BadRequest(w, "Role must be 'artist' or 'manager'")
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, ErrInvalidRefreshToken):
		response.Unauthorized(w, "Invalid or expired refresh token")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrProviderRejected):
		response.Unauthorized(w, "Identity provider rejected the access token")
	case errors.Is(err, ErrProviderUnknown):
		response.BadRequest(w, "Identity provider is not configured")
	case errors.Is(err, ErrProviderEmailMissing):
		response.ValidationError(w, map[string]string{"email": "Identity provider did not share an email address"})
	case errors.Is(err, ErrIdentityUnverified):
		response.Conflict(w, "An account with this email exists; sign in and link the provider from your profile")
	case errors.Is(err, ErrIdentityTaken):
		response.Conflict(w, "This identity is already linked to another account")
	case errors.Is(err, ErrProviderUnavailable):
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway, "UPSTREAM_ERROR", "Identity provider unavailable", err)
	case errors.Is(err, ErrSessionsUnavailable):
		errorhandler.HandleError(r.Context(), w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Session store unavailable", err)
	default:
		errorhandler.Internal(r.Context(), w, "auth."+op, err)
	}
}
