package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
)

// Fulfillment is a shipment (or return) of some of an order's lines. The
// refund amounts are nullable; nil means "not computed / not refunded" and
// must never be folded as zero into exact-match comparisons.
type Fulfillment struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	FulfillmentOrder int                     `gorm:"column:fulfillment_order;not null;default:1"`
	Status           enums.FulfillmentStatus `gorm:"column:status;type:text;not null;default:'fulfilled'"`
	TrackingNumber   string                  `gorm:"column:tracking_number;not null;default:''"`

	ShippingRefundAmount *decimal.Decimal `gorm:"column:shipping_refund_amount;type:numeric(12,3)"`
	TotalRefundAmount    *decimal.Decimal `gorm:"column:total_refund_amount;type:numeric(12,3)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
