package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Metadata keys written on sessions and subscriptions.
const (
	MetadataUserID       = "userId"
	MetadataPlanID       = "planId"
	MetadataBillingCycle = "billingCycle"
)

// ErrStripeNotConfigured is returned when no secret key was provided.
var ErrStripeNotConfigured = errors.New("billing: stripe secret key not configured")

// StripeSessionCreator creates subscription checkout sessions.
//
// It owns its own client.API instead of setting the package-level
// stripe.Key, so tests and multiple instances never share global state.
type StripeSessionCreator struct {
	api *client.API
}

var _ SessionCreator = (*StripeSessionCreator)(nil)

// NewStripeSessionCreator uses the default Stripe backends when backends is
// nil. Tests pass backends that point at an httptest server.
func NewStripeSessionCreator(secretKey string, backends *stripe.Backends) (*StripeSessionCreator, error) {
	if secretKey == "" {
		return nil, ErrStripeNotConfigured
	}
	return &StripeSessionCreator{api: client.New(secretKey, backends)}, nil
}

func (s *StripeSessionCreator) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := sessionParams(req)
	params.Context = ctx

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: creating stripe checkout session: %w", err)
	}
	return session.ID, nil
}

// sessionParams maps a CheckoutRequest onto Stripe's parameters: one line
// item of the price, subscription mode, billing address collected only when
// Stripe needs it.
func sessionParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	metadata := map[string]string{
		MetadataUserID:       req.UserID,
		MetadataPlanID:       req.PlanID,
		MetadataBillingCycle: string(req.BillingCycle),
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail:            stripe.String(req.CustomerEmail),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: copyMetadata(metadata),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Unconfigured fails every call. The server uses it when STRIPE_SECRET_KEY
// is empty so checkout answers 500 instead of the process refusing to start.
type Unconfigured struct{}

func (Unconfigured) CreateCheckoutSession(context.Context, CheckoutRequest) (string, error) {
	return "", ErrStripeNotConfigured
}
