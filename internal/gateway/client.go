package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dbhayani01/sahumario-app/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// MinReservationAmount is the smallest amount (in minor units) the gateway
// accepts for an order.
const MinReservationAmount = 100

const defaultBaseURL = "https://api.razorpay.com"

type reserveRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type reserveResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ReservationClient creates gateway orders over the gateway REST API.
// It never retries on its own; retry policy belongs to the orchestrator.
// A circuit breaker protects the upstream when the gateway is down.
type ReservationClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*reserveResponse]
}

func NewReservationClient(baseURL, keyID, keySecret string, timeout time.Duration) *ReservationClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ReservationClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		timeout:    timeout,
		httpClient: &http.Client{},
		breaker: gobreaker.NewCircuitBreaker[*reserveResponse](gobreaker.Settings{
			Name: "gateway-orders",
		}),
	}
}

// KeyID returns the public key the checkout UI must be configured with.
func (c *ReservationClient) KeyID() string {
	return c.keyID
}

// TestMode reports whether the configured key is a gateway test key.
func (c *ReservationClient) TestMode() bool {
	return strings.HasPrefix(c.keyID, "rzp_test_")
}

// Reserve creates a single-use gateway order for the given amount.
// Amounts below MinReservationAmount fail fast without contacting the
// gateway. Customer details are folded into the order notes.
func (c *ReservationClient) Reserve(ctx context.Context, amount int64, currency string, customer domain.Customer, notes map[string]string) (*domain.OrderReservation, error) {
	if amount < MinReservationAmount {
		return nil, ErrInvalidAmount
	}
	if c.keyID == "" || c.keySecret == "" {
		return nil, ErrNotConfigured
	}
	if currency == "" {
		currency = "INR"
	}

	mergedNotes := make(map[string]string, len(notes)+3)
	for k, v := range notes {
		mergedNotes[k] = v
	}
	mergedNotes["customer_name"] = customer.Name
	mergedNotes["customer_phone"] = customer.Phone
	mergedNotes["customer_email"] = customer.Email

	payload := reserveRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  fmt.Sprintf("rcpt_%d", time.Now().UnixNano()),
		Notes:    mergedNotes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.breaker.Execute(func() (*reserveResponse, error) {
		return c.createOrder(reqCtx, body)
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: gateway unavailable", ErrReservationFailed)
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: timeout", ErrReservationFailed)
		}
		return nil, fmt.Errorf("%w: %v", ErrReservationFailed, err)
	}

	return &domain.OrderReservation{
		GatewayOrderID: resp.ID,
		Amount:         resp.Amount,
		Currency:       resp.Currency,
		CreatedAt:      time.Now(),
	}, nil
}

func (c *ReservationClient) createOrder(ctx context.Context, body []byte) (*reserveResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gatewayErr gatewayErrorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gatewayErr); decodeErr == nil && gatewayErr.Error.Description != "" {
			return nil, errors.New(gatewayErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var order reserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrMalformedResponse)
	}

	return &order, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
