package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/sakif/prompt2json/internal/model"
)

var testCheckout = CheckoutRequest{
	UserID:        "user-1",
	CustomerEmail: "ada@example.com",
	PlanID:        "pro",
	PriceID:       "price_123",
	BillingCycle:  model.BillingAnnual,
	SuccessURL:    "http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}",
	CancelURL:     "http://localhost:3000/pricing?canceled=true",
}

func TestSessionParams(t *testing.T) {
	p := sessionParams(testCheckout)

	assert.Equal(t, "ada@example.com", *p.CustomerEmail)
	assert.Equal(t, "auto", *p.BillingAddressCollection)
	assert.Equal(t, "subscription", *p.Mode)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, "price_123", *p.LineItems[0].Price)
	assert.Equal(t, int64(1), *p.LineItems[0].Quantity)
	assert.Equal(t, testCheckout.SuccessURL, *p.SuccessURL)
	assert.Equal(t, testCheckout.CancelURL, *p.CancelURL)

	want := map[string]string{"userId": "user-1", "planId": "pro", "billingCycle": "annual"}
	assert.Equal(t, want, p.Metadata)
	assert.Equal(t, want, p.SubscriptionData.Metadata)
}

func newTestStripe(t *testing.T, handler http.HandlerFunc) *StripeSessionCreator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		HTTPClient:        server.Client(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	s, err := NewStripeSessionCreator("sk_test_123", backends)
	require.NoError(t, err)
	return s
}

func TestStripeSessionCreator_Create(t *testing.T) {
	var form url.Values
	var path, auth string

	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_abc","object":"checkout.session"}`))
	})

	id, err := s.CreateCheckoutSession(context.Background(), testCheckout)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", id)

	assert.Equal(t, "/v1/checkout/sessions", path)
	assert.Equal(t, "Bearer sk_test_123", auth)
	assert.Equal(t, "ada@example.com", form.Get("customer_email"))
	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "price_123", form.Get("line_items[0][price]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "user-1", form.Get("metadata[userId]"))
	assert.Equal(t, "pro", form.Get("subscription_data[metadata][planId]"))
	assert.Equal(t, "annual", form.Get("subscription_data[metadata][billingCycle]"))
}

func TestStripeSessionCreator_ProviderError(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	})

	_, err := s.CreateCheckoutSession(context.Background(), testCheckout)
	assert.Error(t, err)
}

func TestNewStripeSessionCreator_NoKey(t *testing.T) {
	_, err := NewStripeSessionCreator("", nil)
	assert.True(t, errors.Is(err, ErrStripeNotConfigured))

	_, err = Unconfigured{}.CreateCheckoutSession(context.Background(), testCheckout)
	assert.True(t, errors.Is(err, ErrStripeNotConfigured))
}
