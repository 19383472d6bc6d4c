// Package payment defines the payment gateway boundary.  The checkout
// service depends only on the Gateway interface so tests can substitute
// a double; the Stripe client in this package is the production
// implementation.
package payment

import (
	"context"
	"fmt"
)

// ChargeRequest describes a single capture attempt.  Amounts are in
// minor currency units (cents), computed by the caller as the subtotal
// shifted two decimal places.
type ChargeRequest struct {
	Token               string // tokenized payment source from the client
	AmountMinor         int64  // amount in minor units
	Currency            string // ISO currency code, e.g. "usd"
	Description         string
	StatementDescriptor string
	// IdempotencyKey makes retried captures safe: the gateway returns
	// the original charge instead of capturing twice.
	IdempotencyKey string
}

// Charge is the gateway's record of captured money.
type Charge struct {
	ID          string // gateway charge reference, stored on the order
	AmountMinor int64
	Currency    string
}

// Gateway charges a payment token for an amount.  Implementations must
// return *CardDeclinedError for user-recoverable declines and
// *GatewayError for transport or gateway-side faults, so callers can
// branch on the failure class.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// CardDeclinedError reports that the gateway processed the request but
// the card was declined.  The buyer can fix this (different card,
// correct details); nothing on our side is wrong.
type CardDeclinedError struct {
	Code    string // gateway decline code, e.g. "card_declined"
	Message string
}

func (e *CardDeclinedError) Error() string {
	return fmt.Sprintf("card declined: %s", e.Message)
}

// GatewayError reports that the charge attempt itself failed: network
// trouble, a 5xx from the gateway, or an unparseable response.  The
// caller cannot tell whether money moved, which is exactly why the
// checkout flow sends an idempotency key with every capture.
type GatewayError struct {
	Status  int // HTTP status from the gateway, 0 for transport errors
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error (status %d): %s", e.Status, e.Message)
}
