package payment

import (
	"errors"
	"fmt"
)

var (
	ErrCheckoutNotFound = errors.New("checkout not found or expired")
	ErrOrderConflict    = errors.New("order already paid with a different payment")
	ErrAmountMismatch   = errors.New("amount does not match the booking price")
	ErrForbidden        = errors.New("not allowed to pay for this order")
	ErrDuplicateOrder   = errors.New("payment for this order already recorded")
	ErrGatewayRejected  = errors.New("payment rejected by gateway")
	ErrUpstream         = errors.New("payment gateway unavailable")
	ErrCheckoutStore    = errors.New("checkout store unavailable")
)

// GatewayError carries the gateway's own rejection code; it matches ErrGatewayRejected
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment rejected by gateway: %s: %s", e.Code, e.Message)
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayRejected
}
