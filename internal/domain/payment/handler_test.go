package payment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallspace/wallspace-api/internal/domain/access"
	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/jwt"
	"github.com/wallspace/wallspace-api/internal/pkg/paygate"
)

type httpFixture struct {
	*fixture
	router http.Handler
	jwt    *jwt.Service
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	f := newFixture()
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	noop := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Mount("/payments", NewHandler(f.service, "https://app.test/").Routes(middleware.Auth(jwtSvc), noop))
	return &httpFixture{fixture: f, router: r, jwt: jwtSvc}
}

func (f *httpFixture) do(t *testing.T, method, path string, body interface{}, p *access.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		tok, err := f.jwt.GenerateAccessToken(p.UserID, p.Role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestCheckoutAndConfirmOverHTTP(t *testing.T) {
	f := newHTTPFixture(t)
	a := artist()

	rr := f.do(t, http.MethodPost, "/payments/checkout", CheckoutRequest{
		SpaceID: f.bookings.space.ID, StartDate: "2030-07-20", EndDate: "2030-07-27",
	}, &a)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Data CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, int64(215000), created.Data.Amount)

	confirm := ConfirmRequest{PaymentKey: "pk_1", OrderID: created.Data.OrderID, Amount: created.Data.Amount}
	rr = f.do(t, http.MethodPost, "/payments/confirm", confirm, &a)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out struct {
		Data ConfirmResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	assert.Equal(t, "confirmed", string(out.Data.Booking.Status))
	assert.False(t, out.Data.Replayed)

	rr = f.do(t, http.MethodPost, "/payments/confirm", confirm, &a)
	require.Equal(t, http.StatusOK, rr.Code)
	var again struct {
		Data ConfirmResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&again))
	assert.True(t, again.Data.Replayed)
	assert.Equal(t, out.Data.Booking.ID, again.Data.Booking.ID)
}

func TestConfirmErrorStatuses(t *testing.T) {
	f := newHTTPFixture(t)
	a := artist()
	c := f.checkout(t, a)

	rr := f.do(t, http.MethodPost, "/payments/confirm", ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: 1}, &a)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	f.gateway.confirmErr = &paygate.Error{Status: 400, Code: "REJECT_CARD_COMPANY", Message: "declined"}
	rr = f.do(t, http.MethodPost, "/payments/confirm", ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}, &a)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "REJECT_CARD_COMPANY")

	f.gateway.confirmErr = paygate.ErrUpstream
	rr = f.do(t, http.MethodPost, "/payments/confirm", ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}, &a)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = f.do(t, http.MethodPost, "/payments/confirm", ConfirmRequest{PaymentKey: "pk_1", OrderID: c.OrderID, Amount: c.Amount}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSuccessRedirects(t *testing.T) {
	f := newHTTPFixture(t)
	c := f.checkout(t, artist())

	rr := f.do(t, http.MethodGet, "/payments/success?paymentKey=pk_1&orderId="+c.OrderID+"&amount=215000", nil, nil)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "https://app.test/bookings/"))

	rr = f.do(t, http.MethodGet, "/payments/success?paymentKey=pk_2&orderId=wall_missing&amount=1", nil, nil)
	require.Equal(t, http.StatusFound, rr.Code)
	loc := rr.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://app.test/payments/fail?"))
	assert.Contains(t, loc, "code=NOT_FOUND")
}
