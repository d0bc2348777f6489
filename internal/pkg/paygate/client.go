package paygate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wallspace/wallspace-api/internal/pkg/httpclient"
)

// ErrUpstream wraps transport failures and unreadable gateway responses
var ErrUpstream = errors.New("payment gateway unavailable")

// Error is a rejection returned by the gateway with its own code
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("paygate: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// Config holds gateway credentials
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client calls the payment gateway's confirm and cancel APIs
type Client struct {
	baseURL string
	auth    string
	http    *http.Client
}

// Payment is the gateway's view of a confirmed payment
type Payment struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status"`
	Method      string          `json:"method"`
	TotalAmount int64           `json:"totalAmount"`
	ApprovedAt  string          `json:"approvedAt"`
	Raw         json.RawMessage `json:"-"`
}

// ConfirmRequest is the body of a confirm call
type ConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// NewClient creates a gateway client. The secret key is sent as the Basic auth user.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		auth:    "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.SecretKey+":")),
		http:    httpclient.New(cfg.Timeout),
	}
}

// Confirm approves a payment authorised on the client side.
// The order id is the idempotency key so a retried confirm is not charged twice.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) (*Payment, error) {
	if strings.TrimSpace(req.PaymentKey) == "" || strings.TrimSpace(req.OrderID) == "" {
		return nil, fmt.Errorf("paygate: payment_key and order_id are required")
	}

	body, err := c.do(ctx, "/v1/payments/confirm", req.OrderID, req)
	if err != nil {
		return nil, err
	}

	var out Payment
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode confirm response: %v", ErrUpstream, err)
	}
	out.Raw = body
	return &out, nil
}

// Cancel voids a confirmed payment
func (c *Client) Cancel(ctx context.Context, paymentKey, reason string) error {
	path := "/v1/payments/" + url.PathEscape(paymentKey) + "/cancel"
	_, err := c.do(ctx, path, "cancel-"+paymentKey, map[string]string{"cancelReason": reason})
	return err
}

func (c *Client) do(ctx context.Context, path, idempotencyKey string, payload interface{}) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("paygate: client is not initialized")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("paygate config error: base_url is empty")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("paygate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("paygate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, httpclient.Describe(ctx, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var gwErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &gwErr); err != nil || gwErr.Code == "" {
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
		}
		gwErr.Code = "UNKNOWN"
		gwErr.Message = strings.TrimSpace(string(body))
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status=%d code=%s", ErrUpstream, resp.StatusCode, gwErr.Code)
	}
	return nil, &Error{Status: resp.StatusCode, Code: gwErr.Code, Message: gwErr.Message}
}
