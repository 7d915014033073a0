package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// TransactionItem is the modern payment record. The settled and pending
// buckets are mutated exclusively by payment-gateway webhook workflows;
// this service reads them to derive charge and refund views. Pending
// buckets hold money promised but not yet settled by the gateway.
type TransactionItem struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	Name     string         `gorm:"column:name;not null;default:''"`
	PSPRef   string         `gorm:"column:psp_reference;not null;default:''"`
	Currency enums.Currency `gorm:"column:currency;type:text;not null"`

	AuthorizedAmount decimal.Decimal `gorm:"column:authorized_amount;type:numeric(12,3);not null;default:0"`
	ChargedAmount    decimal.Decimal `gorm:"column:charged_amount;type:numeric(12,3);not null;default:0"`
	RefundedAmount   decimal.Decimal `gorm:"column:refunded_amount;type:numeric(12,3);not null;default:0"`
	CanceledAmount   decimal.Decimal `gorm:"column:canceled_amount;type:numeric(12,3);not null;default:0"`

	AuthorizePendingAmount decimal.Decimal `gorm:"column:authorize_pending_amount;type:numeric(12,3);not null;default:0"`
	ChargePendingAmount    decimal.Decimal `gorm:"column:charge_pending_amount;type:numeric(12,3);not null;default:0"`
	RefundPendingAmount    decimal.Decimal `gorm:"column:refund_pending_amount;type:numeric(12,3);not null;default:0"`
	CancelPendingAmount    decimal.Decimal `gorm:"column:cancel_pending_amount;type:numeric(12,3);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AmountAuthorized returns the settled authorization bucket as tagged money.
func (t *TransactionItem) AmountAuthorized() money.Money {
	return money.New(t.AuthorizedAmount, t.Currency)
}

// AmountCharged returns the settled charge bucket as tagged money.
func (t *TransactionItem) AmountCharged() money.Money {
	return money.New(t.ChargedAmount, t.Currency)
}

// AmountRefunded returns the settled refund bucket as tagged money.
func (t *TransactionItem) AmountRefunded() money.Money {
	return money.New(t.RefundedAmount, t.Currency)
}

// AmountCanceled returns the settled cancel bucket as tagged money.
func (t *TransactionItem) AmountCanceled() money.Money {
	return money.New(t.CanceledAmount, t.Currency)
}

// AmountAuthorizePending returns the pending authorization bucket.
func (t *TransactionItem) AmountAuthorizePending() money.Money {
	return money.New(t.AuthorizePendingAmount, t.Currency)
}

// AmountChargePending returns the pending charge bucket.
func (t *TransactionItem) AmountChargePending() money.Money {
	return money.New(t.ChargePendingAmount, t.Currency)
}

// AmountRefundPending returns the pending refund bucket.
func (t *TransactionItem) AmountRefundPending() money.Money {
	return money.New(t.RefundPendingAmount, t.Currency)
}

// AmountCancelPending returns the pending cancel bucket.
func (t *TransactionItem) AmountCancelPending() money.Money {
	return money.New(t.CancelPendingAmount, t.Currency)
}
