package enums

import "fmt"

// FulfillmentStatus tracks the state of a shipment or return.
type FulfillmentStatus string

const (
	FulfillmentStatusFulfilled           FulfillmentStatus = "fulfilled"
	FulfillmentStatusRefunded            FulfillmentStatus = "refunded"
	FulfillmentStatusReturned            FulfillmentStatus = "returned"
	FulfillmentStatusRefundedAndReturned FulfillmentStatus = "refunded_and_returned"
	FulfillmentStatusReplaced            FulfillmentStatus = "replaced"
	FulfillmentStatusCanceled            FulfillmentStatus = "canceled"
	FulfillmentStatusWaitingForApproval  FulfillmentStatus = "waiting_for_approval"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusFulfilled,
	FulfillmentStatusRefunded,
	FulfillmentStatusReturned,
	FulfillmentStatusRefundedAndReturned,
	FulfillmentStatusReplaced,
	FulfillmentStatusCanceled,
	FulfillmentStatusWaitingForApproval,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
