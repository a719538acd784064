package checkout

import "regexp"

// friendlyPatterns maps raw failure text onto customer-facing messages.
// Matched in order; first hit wins.
var friendlyPatterns = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?i)insufficient`), "Insufficient funds. Please try a different payment method."},
	{regexp.MustCompile(`(?i)declined`), "Payment declined. Please try a different method."},
	{regexp.MustCompile(`(?i)bad_request_error`), "Invalid payment details. Please check and retry."},
	{regexp.MustCompile(`(?i)network`), "Network error. Check your connection and retry."},
	{regexp.MustCompile(`(?i)timeout`), "Request timed out. Please retry."},
}

const (
	msgReservationFailed  = "Unable to create payment order. Please try again."
	msgVerificationFailed = "Payment could not be verified. Please contact support."
	msgNotConfigured      = "Payments are temporarily unavailable. Please try again later."
	msgGenericDeclined    = "Payment failed. Please try a different method."
)

func friendlyMessage(reason FailureReason, cause error) string {
	switch reason {
	case ReasonNotConfigured:
		// Operator fault; the customer gets a generic message only.
		return msgNotConfigured
	case ReasonVerificationFailed:
		return msgVerificationFailed
	}

	if cause != nil {
		raw := cause.Error()
		for _, entry := range friendlyPatterns {
			if entry.pattern.MatchString(raw) {
				return entry.message
			}
		}
	}

	switch reason {
	case ReasonGatewayDeclined:
		return msgGenericDeclined
	default:
		return msgReservationFailed
	}
}
