package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeClient charges cards through Stripe's HTTP API.  Only the
// charges endpoint is wrapped; everything else the platform needs from
// Stripe lives outside this codebase.
type StripeClient struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewStripeClient returns a client authenticated with the given secret
// key.  The base URL can be overridden for tests.
func NewStripeClient(secretKey string, opts ...func(*StripeClient)) *StripeClient {
	c := &StripeClient{
		secretKey: secretKey,
		baseURL:   defaultStripeBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) func(*StripeClient) {
	return func(c *StripeClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) func(*StripeClient) {
	return func(c *StripeClient) { c.client = h }
}

type stripeCharge struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Charge captures req.AmountMinor from the tokenized source.  The
// idempotency key, when present, is forwarded in the Idempotency-Key
// header so a retried request returns the original charge instead of
// capturing twice.
func (c *StripeClient) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	form := url.Values{}
	form.Set("source", req.Token)
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency)
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	if req.StatementDescriptor != "" {
		form.Set("statement_descriptor", req.StatementDescriptor)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/charges", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}
	httpReq.SetBasicAuth(c.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &GatewayError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusOK {
		var ch stripeCharge
		if err := json.Unmarshal(body, &ch); err != nil || ch.ID == "" {
			return nil, &GatewayError{Status: resp.StatusCode, Message: "malformed charge response"}
		}
		return &Charge{ID: ch.ID, AmountMinor: ch.Amount, Currency: ch.Currency}, nil
	}

	var se stripeError
	if err := json.Unmarshal(body, &se); err == nil && se.Error.Type == "card_error" {
		return nil, &CardDeclinedError{Code: se.Error.Code, Message: se.Error.Message}
	}
	msg := se.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return nil, &GatewayError{Status: resp.StatusCode, Message: msg}
}
