package enums

import "fmt"

// PaymentIntentStatus mirrors the capture adapter state machine:
// initiated -> approved -> captured, with failed / capture_failed branches.
type PaymentIntentStatus string

const (
	PaymentIntentStatusInitiated     PaymentIntentStatus = "initiated"
	PaymentIntentStatusApproved      PaymentIntentStatus = "approved"
	PaymentIntentStatusCaptured      PaymentIntentStatus = "captured"
	PaymentIntentStatusFailed        PaymentIntentStatus = "failed"
	PaymentIntentStatusCaptureFailed PaymentIntentStatus = "capture_failed"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusInitiated,
	PaymentIntentStatusApproved,
	PaymentIntentStatusCaptured,
	PaymentIntentStatusFailed,
	PaymentIntentStatusCaptureFailed,
}

// String implements fmt.Stringer.
func (p PaymentIntentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentIntentStatus.
func (p PaymentIntentStatus) IsValid() bool {
	for _, candidate := range validPaymentIntentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the intent can still change state.
func (p PaymentIntentStatus) IsTerminal() bool {
	switch p {
	case PaymentIntentStatusCaptured, PaymentIntentStatusFailed, PaymentIntentStatusCaptureFailed:
		return true
	default:
		return false
	}
}

// ParsePaymentIntentStatus converts raw input into a PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	for _, candidate := range validPaymentIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
