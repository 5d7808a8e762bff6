package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/prompt2json/internal/auth"
	"github.com/sakif/prompt2json/internal/model"
	"github.com/sakif/prompt2json/internal/service"
)

// CheckoutStarter is satisfied by *service.CheckoutService.
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, owner *model.User, planID, priceID, billingCycle string) (string, error)
}

var _ CheckoutStarter = (*service.CheckoutService)(nil)

type CheckoutHandler struct {
	checkout CheckoutStarter
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout CheckoutStarter, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type checkoutRequest struct {
	PriceID      string `json:"priceId"`
	PlanID       string `json:"planId"`
	BillingCycle string `json:"billingCycle"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
}

// HandleCreateSession opens a hosted subscription checkout for the caller.
//
// HTTP: POST /checkout-session
// BODY: {"priceId": "...", "planId": "...", "billingCycle": "monthly"}
func (h *CheckoutHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: service.MsgMissingCheckoutParams})
		return
	}

	user, _ := auth.UserFromContext(r.Context())

	sessionID, err := h.checkout.StartCheckout(r.Context(), user, req.PlanID, req.PriceID, req.BillingCycle)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("checkout session failed",
				slog.String("plan_id", req.PlanID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err, service.MsgCheckoutFailed)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{SessionID: sessionID})
}
