package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the storefront API surface.
func NewRouter(carts *CartHandler, payments *PaymentsHandler, checkouts *CheckoutHandler, orders *OrdersHandler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Payment boundaries; no session required, the order id is the handle.
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/order", payments.CreateOrder)
		r.Post("/verify", payments.VerifyPayment)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionAuthMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}", carts.UpdateQuantity)
			r.Delete("/items/{product_id}", carts.RemoveItem)
			r.Delete("/", carts.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkouts.Submit)
			r.Post("/complete", checkouts.Complete)
			r.Post("/cancel", checkouts.Cancel)
			r.Post("/fail", checkouts.Fail)
			r.Get("/status", checkouts.Status)
		})

		r.Get("/orders", orders.ListOrders)
	})

	return r
}
