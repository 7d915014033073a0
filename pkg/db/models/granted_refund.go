package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// OrderGrantedRefund is a refund promise approved against an order. It is
// distinct from a settled refund: the grant ledger reconciles grants
// against what transactions have actually processed.
type OrderGrantedRefund struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Amount   decimal.Decimal `gorm:"column:amount;type:numeric(12,3);not null;default:0"`
	Currency enums.Currency  `gorm:"column:currency;type:text;not null"`
	Reason   string          `gorm:"column:reason;not null;default:''"`

	TransactionItemID *uuid.UUID `gorm:"column:transaction_item_id;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AmountMoney returns the granted amount as tagged money.
func (g *OrderGrantedRefund) AmountMoney() money.Money {
	return money.New(g.Amount, g.Currency)
}
