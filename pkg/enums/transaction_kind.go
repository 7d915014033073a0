package enums

import "fmt"

// TransactionKind classifies legacy payment-gateway transaction records.
type TransactionKind string

const (
	TransactionKindAuth    TransactionKind = "auth"
	TransactionKindCapture TransactionKind = "capture"
	TransactionKindRefund  TransactionKind = "refund"
	TransactionKindVoid    TransactionKind = "void"
	TransactionKindPending TransactionKind = "pending"
)

var validTransactionKinds = []TransactionKind{
	TransactionKindAuth,
	TransactionKindCapture,
	TransactionKindRefund,
	TransactionKindVoid,
	TransactionKindPending,
}

// String implements fmt.Stringer.
func (t TransactionKind) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionKind.
func (t TransactionKind) IsValid() bool {
	for _, candidate := range validTransactionKinds {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionKind converts raw input into a TransactionKind.
func ParseTransactionKind(value string) (TransactionKind, error) {
	for _, candidate := range validTransactionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction kind %q", value)
}
