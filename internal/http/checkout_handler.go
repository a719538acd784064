package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/checkout"
	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/dbhayani01/sahumario-app/internal/gateway"
)

// KeyProvider exposes the public gateway key the checkout UI opens with.
type KeyProvider interface {
	KeyID() string
	TestMode() bool
}

type CheckoutHandler struct {
	manager *checkout.Manager
	adapter *gateway.Adapter
	keys    KeyProvider
	timeout time.Duration
}

func NewCheckoutHandler(manager *checkout.Manager, adapter *gateway.Adapter, keys KeyProvider, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		manager: manager,
		adapter: adapter,
		keys:    keys,
		timeout: timeout,
	}
}

type SubmitCheckoutRequestDTO struct {
	Shipping domain.ShippingDetails `json:"shipping"`
}

type SubmitCheckoutResponseDTO struct {
	State          string `json:"state"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	KeyID          string `json:"key_id,omitempty"`
	TestMode       bool   `json:"test_mode,omitempty"`
}

type CompletePaymentRequestDTO struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type CancelPaymentRequestDTO struct {
	OrderID string `json:"order_id"`
}

type FailPaymentRequestDTO struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type CheckoutOutcomeDTO struct {
	State   string        `json:"state"`
	Order   *domain.Order `json:"order,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())

	var req SubmitCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := h.manager.Begin(ctx, userID, req.Shipping)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	if outcome.Reservation != nil {
		respondJSON(w, http.StatusOK, SubmitCheckoutResponseDTO{
			State:          domain.CheckoutStateAwaitingGateway.String(),
			GatewayOrderID: outcome.Reservation.GatewayOrderID,
			Amount:         outcome.Reservation.Amount,
			Currency:       outcome.Reservation.Currency,
			KeyID:          h.keys.KeyID(),
			TestMode:       h.keys.TestMode(),
		})
		return
	}

	// The attempt ended before the gateway opened (only possible outcome
	// without an error is a cancellation race).
	respondJSON(w, http.StatusOK, CheckoutOutcomeDTO{State: h.manager.State(userID).String()})
}

// POST /api/v1/checkout/complete
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())

	var req CompletePaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, ok := h.adapter.Session(req.OrderID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_session", gateway.ErrNoActiveSession.Error())
		return
	}

	session.Succeed(domain.PaymentAttempt{
		GatewayOrderID:   req.OrderID,
		GatewayPaymentID: req.PaymentID,
		Signature:        req.Signature,
	})

	h.respondOutcome(ctx, w, userID)
}

// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())

	var req CancelPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, ok := h.adapter.Session(req.OrderID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_session", gateway.ErrNoActiveSession.Error())
		return
	}

	session.Dismiss()

	// A dismissal is not an error: no banner, cart and form untouched.
	if _, err := h.manager.AwaitOutcome(ctx, userID); err != nil {
		respondError(w, http.StatusGatewayTimeout, "timeout", "checkout timed out")
		return
	}
	respondJSON(w, http.StatusOK, CheckoutOutcomeDTO{State: h.manager.State(userID).String()})
}

// POST /api/v1/checkout/fail
func (h *CheckoutHandler) Fail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())

	var req FailPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, ok := h.adapter.Session(req.OrderID)
	if !ok {
		respondError(w, http.StatusNotFound, "no_active_session", gateway.ErrNoActiveSession.Error())
		return
	}

	session.Fail(req.Reason)

	h.respondOutcome(ctx, w, userID)
}

// GET /api/v1/checkout/status
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	dto := CheckoutOutcomeDTO{State: h.manager.State(userID).String()}
	if result, err, ok := h.manager.LastResult(userID); ok {
		if err != nil {
			var failure *checkout.Failure
			if errors.As(err, &failure) {
				dto.Reason = string(failure.Reason)
				dto.Message = failure.Message()
			}
		} else if result != nil && result.Order != nil {
			dto.Order = result.Order
		}
	}
	respondJSON(w, http.StatusOK, dto)
}

func (h *CheckoutHandler) respondOutcome(ctx context.Context, w http.ResponseWriter, userID string) {
	result, err := h.manager.AwaitOutcome(ctx, userID)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	dto := CheckoutOutcomeDTO{State: h.manager.State(userID).String()}
	if result != nil && result.Order != nil {
		dto.Order = result.Order
	}
	respondJSON(w, http.StatusOK, dto)
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrPreconditionNotMet):
		respondError(w, http.StatusBadRequest, "precondition_not_met", err.Error())
		return
	case errors.Is(err, checkout.ErrAlreadyInProgress):
		respondError(w, http.StatusConflict, "already_in_progress", err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "checkout timed out")
		return
	}

	var failure *checkout.Failure
	if errors.As(err, &failure) {
		status := http.StatusBadGateway
		switch failure.Reason {
		case checkout.ReasonGatewayDeclined:
			status = http.StatusPaymentRequired
		case checkout.ReasonVerificationFailed:
			status = http.StatusBadRequest
		case checkout.ReasonNotConfigured:
			status = http.StatusInternalServerError
		}
		respondJSON(w, status, CheckoutOutcomeDTO{
			State:   domain.CheckoutStateFailed.String(),
			Reason:  string(failure.Reason),
			Message: failure.Message(),
		})
		return
	}

	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
