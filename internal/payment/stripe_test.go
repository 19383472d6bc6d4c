package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeCharge_Success(t *testing.T) {
	var gotAuth, gotIdem, gotAmount, gotSource string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/charges", r.URL.Path)
		user, _, _ := r.BasicAuth()
		gotAuth = user
		gotIdem = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotAmount = r.PostFormValue("amount")
		gotSource = r.PostFormValue("source")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_123","amount":5000,"currency":"usd"}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_abc", WithBaseURL(srv.URL))
	ch, err := c.Charge(context.Background(), ChargeRequest{
		Token:          "tok_visa",
		AmountMinor:    5000,
		Currency:       "usd",
		Description:    "Seatsupply",
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_123", ch.ID)
	assert.Equal(t, int64(5000), ch.AmountMinor)
	assert.Equal(t, "sk_test_abc", gotAuth)
	assert.Equal(t, "idem-1", gotIdem)
	assert.Equal(t, "5000", gotAmount)
	assert.Equal(t, "tok_visa", gotSource)
}

func TestStripeCharge_CardDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_abc", WithBaseURL(srv.URL))
	_, err := c.Charge(context.Background(), ChargeRequest{Token: "tok_declined", AmountMinor: 100, Currency: "usd"})
	var declined *CardDeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "card_declined", declined.Code)
}

func TestStripeCharge_GatewayFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_abc", WithBaseURL(srv.URL))
	_, err := c.Charge(context.Background(), ChargeRequest{Token: "tok_visa", AmountMinor: 100, Currency: "usd"})
	var gw *GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, http.StatusInternalServerError, gw.Status)
}

func TestStripeCharge_TransportError(t *testing.T) {
	c := NewStripeClient("sk_test_abc", WithBaseURL("http://127.0.0.1:1"))
	_, err := c.Charge(context.Background(), ChargeRequest{Token: "tok_visa", AmountMinor: 100, Currency: "usd"})
	var gw *GatewayError
	require.ErrorAs(t, err, &gw)
	assert.Equal(t, 0, gw.Status)
}

func TestStripeCharge_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a charge"}`))
	}))
	defer srv.Close()

	c := NewStripeClient("sk_test_abc", WithBaseURL(srv.URL))
	_, err := c.Charge(context.Background(), ChargeRequest{Token: "tok_visa", AmountMinor: 100, Currency: "usd"})
	var gw *GatewayError
	require.ErrorAs(t, err, &gw)
}
