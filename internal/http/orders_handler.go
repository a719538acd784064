package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
)

type OrderLister interface {
	List(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	ledger  OrderLister
	timeout time.Duration
}

func NewOrdersHandler(ledger OrderLister, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ledger:  ledger,
		timeout: timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())

	orders, err := h.ledger.List(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	if orders == nil {
		orders = make([]*domain.Order, 0)
	}
	respondJSON(w, http.StatusOK, orders)
}
