package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// Payment is the legacy single-payment record, kept for orders that predate
// the transaction model. At most one payment per order is active in
// practice, though the schema does not enforce it.
type Payment struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Gateway      string             `gorm:"column:gateway;not null;default:''"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	ChargeStatus enums.ChargeStatus `gorm:"column:charge_status;type:text;not null;default:'not_charged'"`
	Currency     enums.Currency     `gorm:"column:currency;type:text;not null"`

	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(12,3);not null;default:0"`
	CapturedAmount decimal.Decimal `gorm:"column:captured_amount;type:numeric(12,3);not null;default:0"`

	Transactions []PaymentTransaction `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Captured returns the captured amount as tagged money.
func (p *Payment) Captured() money.Money {
	return money.New(p.CapturedAmount, p.Currency)
}

// Total returns the payment total as tagged money.
func (p *Payment) Total() money.Money {
	return money.New(p.TotalAmount, p.Currency)
}

// PaymentTransaction is a gateway event recorded against a legacy payment.
type PaymentTransaction struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID `gorm:"column:payment_id;type:uuid;not null;index"`

	Kind      enums.TransactionKind `gorm:"column:kind;type:text;not null"`
	IsSuccess bool                  `gorm:"column:is_success;not null;default:false"`
	Currency  enums.Currency        `gorm:"column:currency;type:text;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,3);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AmountMoney returns the transaction amount as tagged money.
func (t *PaymentTransaction) AmountMoney() money.Money {
	return money.New(t.Amount, t.Currency)
}
