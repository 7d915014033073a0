package enums

import "fmt"

// OrderOrigin records which flow produced an order.
type OrderOrigin string

const (
	OrderOriginCheckout   OrderOrigin = "checkout"
	OrderOriginDraft      OrderOrigin = "draft"
	OrderOriginReissue    OrderOrigin = "reissue"
	OrderOriginBulkCreate OrderOrigin = "bulk_create"
)

var validOrderOrigins = []OrderOrigin{
	OrderOriginCheckout,
	OrderOriginDraft,
	OrderOriginReissue,
	OrderOriginBulkCreate,
}

// String implements fmt.Stringer.
func (o OrderOrigin) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderOrigin.
func (o OrderOrigin) IsValid() bool {
	for _, candidate := range validOrderOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderOrigin converts raw input into an OrderOrigin.
func ParseOrderOrigin(value string) (OrderOrigin, error) {
	for _, candidate := range validOrderOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order origin %q", value)
}
