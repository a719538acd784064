package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dbhayani01/sahumario-app/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRouter(t *testing.T) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	handler := NewCartHandler(cart.NewService(cart.NewRedisStore(client), nil), time.Second)

	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(SessionAuthMiddleware)
		r.Get("/", handler.GetCart)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{product_id}", handler.UpdateQuantity)
		r.Delete("/items/{product_id}", handler.RemoveItem)
		r.Delete("/", handler.ClearCart)
	})
	return r
}

func doCartRequest(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Session-ID", "session-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var dto CartResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestCartRoutes_RequireSession(t *testing.T) {
	router := setupCartRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCart_EmptyForNewSession(t *testing.T) {
	router := setupCartRouter(t)

	rec := doCartRequest(t, router, http.MethodGet, "/api/v1/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decodeCart(t, rec)
	assert.Empty(t, dto.Items)
	assert.Equal(t, 0, dto.Count)
	assert.Equal(t, int64(0), dto.Subtotal)
}

func TestAddItem_ReturnsUpdatedCart(t *testing.T) {
	router := setupCartRouter(t)

	rec := doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "p1", Name: "Amber Oud", Price: 50000})
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decodeCart(t, rec)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 1, dto.Count)
	assert.Equal(t, int64(50000), dto.Subtotal)
}

func TestAddItem_InvalidProduct(t *testing.T) {
	router := setupCartRouter(t)

	rec := doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "", Price: 100})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_product", resp.Code)
}

func TestUpdateQuantity(t *testing.T) {
	router := setupCartRouter(t)

	doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "p1", Price: 100})

	rec := doCartRequest(t, router, http.MethodPut, "/api/v1/cart/items/p1",
		UpdateQuantityRequestDTO{Quantity: 4})
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decodeCart(t, rec)
	assert.Equal(t, 4, dto.Count)
	assert.Equal(t, int64(400), dto.Subtotal)
}

func TestUpdateQuantity_Negative(t *testing.T) {
	router := setupCartRouter(t)

	rec := doCartRequest(t, router, http.MethodPut, "/api/v1/cart/items/p1",
		UpdateQuantityRequestDTO{Quantity: -2})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_quantity", resp.Code)
}

func TestRemoveItem(t *testing.T) {
	router := setupCartRouter(t)

	doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "p1", Price: 100})
	doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "p2", Price: 200})

	rec := doCartRequest(t, router, http.MethodDelete, "/api/v1/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decodeCart(t, rec)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "p2", dto.Items[0].ProductID)
}

func TestClearCart(t *testing.T) {
	router := setupCartRouter(t)

	doCartRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		AddItemRequestDTO{ProductID: "p1", Price: 100})

	rec := doCartRequest(t, router, http.MethodDelete, "/api/v1/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decodeCart(t, rec)
	assert.Empty(t, dto.Items)
	assert.Equal(t, int64(0), dto.Subtotal)
}
