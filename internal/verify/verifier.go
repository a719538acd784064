package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrMissingFields rejects a verification request before anything is
	// computed.
	ErrMissingFields = errors.New("missing required payment fields")

	// ErrNotConfigured means the signing secret is absent. This is an
	// operator fault, distinct from a failed verification, and must never be
	// reported to the caller as a declined payment.
	ErrNotConfigured = errors.New("payment gateway is not configured")
)

// Verifier recomputes the gateway payment signature server-side. Stateless
// and deterministic: same inputs, same verdict, no side effects.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify checks that signature == HMAC-SHA256(secret, orderID|paymentID).
// The comparison is constant-time; a forged callback must not learn anything
// from response timing.
func (v *Verifier) Verify(orderID, paymentID, signature string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return false, ErrMissingFields
	}
	if v.secret == "" {
		return false, ErrNotConfigured
	}

	expected := Signature(v.secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// Signature computes the hex-encoded gateway signature for an order/payment
// pair. Exposed so tests and tooling can produce valid signatures.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s|%s", orderID, paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}
