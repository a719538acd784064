package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key"

func TestVerify_ValidSignature(t *testing.T) {
	v := NewVerifier(testSecret)
	sig := Signature(testSecret, "order_1", "pay_1")

	ok, err := v.Verify("order_1", "pay_1", sig)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Deterministic(t *testing.T) {
	v := NewVerifier(testSecret)
	sig := Signature(testSecret, "order_1", "pay_1")

	first, err1 := v.Verify("order_1", "pay_1", sig)
	second, err2 := v.Verify("order_1", "pay_1", sig)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestVerify_SingleByteFlip(t *testing.T) {
	v := NewVerifier(testSecret)
	sig := Signature(testSecret, "order_1", "pay_1")

	// Flip one byte of the hex signature.
	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	ok, err := v.Verify("order_1", "pay_1", string(flipped))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_TamperedSignature(t *testing.T) {
	v := NewVerifier(testSecret)

	ok, err := v.Verify("order_1", "pay_1", "deadbeef")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MissingFields(t *testing.T) {
	v := NewVerifier(testSecret)

	cases := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{"no order id", "", "pay_1", "sig"},
		{"no payment id", "order_1", "", "sig"},
		{"no signature", "order_1", "pay_1", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := v.Verify(tc.orderID, tc.paymentID, tc.signature)
			assert.ErrorIs(t, err, ErrMissingFields)
			assert.False(t, ok)
		})
	}
}

func TestVerify_NotConfigured(t *testing.T) {
	v := NewVerifier("")

	ok, err := v.Verify("order_1", "pay_1", "sig")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, ok)
}

func TestVerify_DifferentPaymentChangesSignature(t *testing.T) {
	sig1 := Signature(testSecret, "order_1", "pay_1")
	sig2 := Signature(testSecret, "order_1", "pay_2")

	assert.NotEqual(t, sig1, sig2)
}
