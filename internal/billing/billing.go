// Package billing holds the plan catalog and the payment-provider client
// used to open checkout sessions.
package billing

import (
	"context"

	"github.com/sakif/prompt2json/internal/model"
)

// CheckoutRequest describes one hosted checkout session.
//
// UserID, PlanID and BillingCycle are attached as metadata to both the
// session and the subscription it creates, so later reconciliation can map
// a payment back to the local user.
type CheckoutRequest struct {
	UserID        string
	CustomerEmail string
	PlanID        string
	PriceID       string
	BillingCycle  model.BillingCycle
	SuccessURL    string
	CancelURL     string
}

// SessionCreator opens a checkout session and returns its id.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
}
