package enums

import "fmt"

// ChargeStatus describes how much of an order's total has been charged.
// It is stored on legacy payments and derived fresh for modern orders.
type ChargeStatus string

const (
	ChargeStatusNotCharged        ChargeStatus = "not_charged"
	ChargeStatusPending           ChargeStatus = "pending"
	ChargeStatusPartiallyCharged  ChargeStatus = "partially_charged"
	ChargeStatusFullyCharged      ChargeStatus = "fully_charged"
	ChargeStatusPartiallyRefunded ChargeStatus = "partially_refunded"
	ChargeStatusFullyRefunded     ChargeStatus = "fully_refunded"
	ChargeStatusRefused           ChargeStatus = "refused"
	ChargeStatusCancelled         ChargeStatus = "cancelled"
)

var validChargeStatuses = []ChargeStatus{
	ChargeStatusNotCharged,
	ChargeStatusPending,
	ChargeStatusPartiallyCharged,
	ChargeStatusFullyCharged,
	ChargeStatusPartiallyRefunded,
	ChargeStatusFullyRefunded,
	ChargeStatusRefused,
	ChargeStatusCancelled,
}

// String implements fmt.Stringer.
func (c ChargeStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChargeStatus.
func (c ChargeStatus) IsValid() bool {
	for _, candidate := range validChargeStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChargeStatus converts raw input into a ChargeStatus.
func ParseChargeStatus(value string) (ChargeStatus, error) {
	for _, candidate := range validChargeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid charge status %q", value)
}
