package payment

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wallspace/wallspace-api/internal/domain/booking"
	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/errorhandler"
	"github.com/wallspace/wallspace-api/internal/pkg/logger"
	"github.com/wallspace/wallspace-api/internal/pkg/pagination"
	"github.com/wallspace/wallspace-api/internal/pkg/response"
	"github.com/wallspace/wallspace-api/internal/pkg/validator"
)

// Handler handles payment HTTP requests
type Handler struct {
	service     *Service
	frontendURL string
}

// NewHandler creates payment handler. frontendURL is the target of the redirect flow.
func NewHandler(service *Service, frontendURL string) *Handler {
	return &Handler{service: service, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// Checkout handles POST /payments/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Checkout(r.Context(), middleware.GetPrincipal(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "checkout", err)
		return
	}

	response.Created(w, CheckoutResponse{
		OrderID:   c.OrderID,
		Amount:    c.Amount,
		OrderName: c.OrderName,
		ExpiresAt: h.service.ExpiresAt(c),
	})
}

// Confirm handles POST /payments/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	res, err := h.service.Confirm(r.Context(), &p, &req)
	if err != nil {
		h.writeError(w, r, "confirm", err)
		return
	}

	response.OK(w, ConfirmResponse{
		Booking:  booking.BookingResponseFromEntity(res.Booking),
		Payment:  PaymentResponseFromEntity(res.Payment),
		Replayed: res.Replayed,
	})
}

// Success handles GET /payments/success, the gateway's browser redirect.
// The caller is not authenticated; identity comes from the stored checkout.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseInt(q.Get("amount"), 10, 64)
	req := ConfirmRequest{
		PaymentKey: q.Get("paymentKey"),
		OrderID:    q.Get("orderId"),
		Amount:     amount,
	}
	if err != nil || req.PaymentKey == "" || req.OrderID == "" {
		h.redirectFail(w, r, "INVALID_REQUEST", "paymentKey, orderId and amount are required")
		return
	}

	res, err := h.service.Confirm(r.Context(), nil, &req)
	if err != nil {
		code, message := failureCode(err)
		if code == "INTERNAL_ERROR" || code == "UPSTREAM_ERROR" {
			logger.LogError(r.Context(), err, "Payment redirect confirm failed", "order_id", req.OrderID)
		}
		h.redirectFail(w, r, code, message)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/bookings/"+res.Booking.ID.String(), http.StatusFound)
}

// ListMine handles GET /payments/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	items, total, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()), page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, r, "list_my", err)
		return
	}

	out := make([]PaymentResponse, 0, len(items))
	for _, p := range items {
		out = append(out, PaymentResponseFromEntity(p))
	}
	response.WithMeta(w, out, response.NewMeta(total, page.Page, page.Limit))
}

func (h *Handler) redirectFail(w http.ResponseWriter, r *http.Request, code, message string) {
	v := url.Values{}
	v.Set("code", code)
	v.Set("message", message)
	http.Redirect(w, r, h.frontendURL+"/payments/fail?"+v.Encode(), http.StatusFound)
}

// failureCode maps a confirm error to the code and message shown on the fail page
func failureCode(err error) (string, string) {
	var gwErr *GatewayError
	switch {
	case errors.As(err, &gwErr):
		return gwErr.Code, gwErr.Message
	case errors.Is(err, ErrCheckoutNotFound):
		return "NOT_FOUND", "Checkout not found or expired"
	case errors.Is(err, ErrOrderConflict):
		return "CONFLICT", "Order already paid with a different payment"
	case errors.Is(err, ErrAmountMismatch):
		return "BAD_REQUEST", "Amount does not match the booking price"
	case errors.Is(err, booking.ErrSpaceUnavailable), errors.Is(err, booking.ErrSpaceClosed):
		return "CONFLICT", "Space is no longer available, the payment was cancelled"
	case errors.Is(err, ErrUpstream):
		return "UPSTREAM_ERROR", "Payment gateway unavailable"
	default:
		return "INTERNAL_ERROR", "Payment could not be completed"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var gwErr *GatewayError
	switch {
	case errors.As(err, &gwErr):
		response.PaymentRejected(w, gwErr.Code, gwErr.Message)
	case errors.Is(err, ErrForbidden), errors.Is(err, booking.ErrForbidden):
		response.Forbidden(w, "You are not allowed to pay for this order")
	case errors.Is(err, ErrCheckoutNotFound):
		response.NotFound(w, "Checkout not found or expired")
	case errors.Is(err, ErrOrderConflict):
		response.Conflict(w, "Order already paid with a different payment")
	case errors.Is(err, ErrAmountMismatch):
		response.BadRequest(w, "Amount does not match the booking price")
	case errors.Is(err, ErrUpstream):
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway, "UPSTREAM_ERROR", "Payment gateway unavailable", err)
	case errors.Is(err, ErrCheckoutStore):
		errorhandler.HandleError(r.Context(), w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Checkout store unavailable", err)
	case errors.Is(err, booking.ErrSpaceNotFound):
		response.NotFound(w, "Space not found")
	case errors.Is(err, booking.ErrArtistNotFound):
		response.NotFound(w, "Artist account not found")
	case errors.Is(err, booking.ErrInvalidDateRange):
		response.ValidationError(w, map[string]string{"end_date": "end_date must not be before start_date"})
	case errors.Is(err, booking.ErrStartInPast):
		response.ValidationError(w, map[string]string{"start_date": "start_date must not be in the past"})
	case errors.Is(err, booking.ErrSpaceClosed):
		response.Conflict(w, "Space is closed for bookings")
	case errors.Is(err, booking.ErrSpaceUnavailable):
		response.Conflict(w, "Space is already booked for these dates")
	default:
		errorhandler.Internal(r.Context(), w, "payment."+op, err)
	}
}
