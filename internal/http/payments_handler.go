package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/audit"
	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/dbhayani01/sahumario-app/internal/gateway"
	"github.com/dbhayani01/sahumario-app/internal/verify"
	"github.com/sirupsen/logrus"
)

type Reserver interface {
	Reserve(ctx context.Context, amount int64, currency string, customer domain.Customer, notes map[string]string) (*domain.OrderReservation, error)
}

type PaymentVerifier interface {
	Verify(orderID, paymentID, signature string) (bool, error)
}

// PaymentsHandler exposes the two server-side payment boundaries the
// storefront UI talks to: order reservation and signature verification.
type PaymentsHandler struct {
	reserver Reserver
	verifier PaymentVerifier
	audit    *audit.Logger
	timeout  time.Duration
}

func NewPaymentsHandler(reserver Reserver, verifier PaymentVerifier, auditLog *audit.Logger, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{
		reserver: reserver,
		verifier: verifier,
		audit:    auditLog,
		timeout:  timeout,
	}
}

type CreateOrderRequestDTO struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Customer domain.Customer   `json:"customer"`
	Notes    map[string]string `json:"notes"`
}

type CreateOrderResponseDTO struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paymentsMessage struct {
	Message string `json:"message"`
}

type VerifyRequestDTO struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type VerifyResponseDTO struct {
	Verified  bool   `json:"verified"`
	PaymentID string `json:"payment_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// POST /api/payments/order
func (h *PaymentsHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, paymentsMessage{Message: "amount must be a number >= 100 (paise)"})
		return
	}

	reservation, err := h.reserver.Reserve(ctx, req.Amount, req.Currency, req.Customer, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidAmount):
			respondJSON(w, http.StatusBadRequest, paymentsMessage{Message: "amount must be a number >= 100 (paise)"})
		case errors.Is(err, gateway.ErrNotConfigured):
			respondJSON(w, http.StatusInternalServerError, paymentsMessage{Message: "Payment gateway is not configured"})
		default:
			respondJSON(w, http.StatusBadGateway, paymentsMessage{Message: "Failed to create payment order"})
		}
		return
	}

	respondJSON(w, http.StatusOK, CreateOrderResponseDTO{
		ID:       reservation.GatewayOrderID,
		Amount:   reservation.Amount,
		Currency: reservation.Currency,
	})
}

// POST /api/payments/verify
func (h *PaymentsHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, VerifyResponseDTO{Verified: false, Message: "Missing required payment fields"})
		return
	}

	verified, err := h.verifier.Verify(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, verify.ErrMissingFields):
			respondJSON(w, http.StatusBadRequest, VerifyResponseDTO{Verified: false, Message: "Missing required payment fields"})
		case errors.Is(err, verify.ErrNotConfigured):
			respondJSON(w, http.StatusInternalServerError, paymentsMessage{Message: "Payment gateway is not configured"})
		default:
			respondJSON(w, http.StatusInternalServerError, paymentsMessage{Message: "Payment verification failed"})
		}
		return
	}

	if !verified {
		h.audit.Warn("VERIFICATION_MISMATCH", logrus.Fields{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"request_id": getRequestID(r.Context()),
		})
		respondJSON(w, http.StatusBadRequest, VerifyResponseDTO{Verified: false, Message: "Payment verification failed"})
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponseDTO{Verified: true, PaymentID: req.PaymentID})
}
