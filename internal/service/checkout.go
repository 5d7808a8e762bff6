package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/prompt2json/internal/apperror"
	"github.com/sakif/prompt2json/internal/billing"
	"github.com/sakif/prompt2json/internal/model"
)

const (
	MsgMissingCheckoutParams = "Missing required parameters"
	MsgInvalidBillingCycle   = "Billing cycle must be monthly or annual"
	MsgCheckoutFailed        = "Failed to create checkout session"
)

// CheckoutService opens hosted payment sessions for subscription plans.
type CheckoutService struct {
	sessions billing.SessionCreator
	appURL   string
	logger   *slog.Logger
}

// NewCheckoutService builds success and cancel URLs from appURL, the
// public address of the web client.
func NewCheckoutService(sessions billing.SessionCreator, appURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		sessions: sessions,
		appURL:   strings.TrimRight(appURL, "/"),
		logger:   logger,
	}
}

// StartCheckout returns the provider's session id.
//
// The price reference is passed through as given. Nothing checks it
// against the plan catalog because the catalog is presentational.
func (s *CheckoutService) StartCheckout(ctx context.Context, owner *model.User, planID, priceID, billingCycle string) (string, error) {
	if owner == nil {
		return "", apperror.Unauthenticated("Authentication required")
	}

	planID = strings.TrimSpace(planID)
	priceID = strings.TrimSpace(priceID)
	if planID == "" {
		return "", apperror.ValidationFailed("planId", MsgMissingCheckoutParams)
	}
	if priceID == "" {
		return "", apperror.ValidationFailed("priceId", MsgMissingCheckoutParams)
	}

	cycle := model.BillingCycle(strings.TrimSpace(billingCycle))
	if cycle != "" && !cycle.Valid() {
		return "", apperror.ValidationFailed("billingCycle", MsgInvalidBillingCycle)
	}

	sessionID, err := s.sessions.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		UserID:        owner.ID,
		CustomerEmail: owner.Email,
		PlanID:        planID,
		PriceID:       priceID,
		BillingCycle:  cycle,
		SuccessURL:    s.appURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.appURL + "/pricing?canceled=true",
	})
	if err != nil {
		return "", apperror.Upstream(MsgCheckoutFailed, err)
	}

	s.logger.Info("checkout session created",
		slog.String("user_id", owner.ID),
		slog.String("plan_id", planID),
		slog.String("billing_cycle", string(cycle)),
		slog.String("session_id", sessionID),
	)

	return sessionID, nil
}
