package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// Order is the monetary snapshot and lifecycle state of a customer order.
// The snapshot columns are a cache: they are only trusted while
// price_expiration is in the future and are refreshed by the pricing
// service otherwise.
type Order struct {
	ID       uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number   int64             `gorm:"column:number;not null;uniqueIndex"`
	Currency enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status   enums.OrderStatus `gorm:"column:status;type:text;not null;default:'unfulfilled'"`
	Origin   enums.OrderOrigin `gorm:"column:origin;type:text;not null;default:'checkout'"`

	SubtotalNetAmount        decimal.Decimal `gorm:"column:subtotal_net_amount;type:numeric(12,3);not null;default:0"`
	SubtotalGrossAmount      decimal.Decimal `gorm:"column:subtotal_gross_amount;type:numeric(12,3);not null;default:0"`
	ShippingPriceNetAmount   decimal.Decimal `gorm:"column:shipping_price_net_amount;type:numeric(12,3);not null;default:0"`
	ShippingPriceGrossAmount decimal.Decimal `gorm:"column:shipping_price_gross_amount;type:numeric(12,3);not null;default:0"`
	ShippingTaxRate          decimal.Decimal `gorm:"column:shipping_tax_rate;type:numeric(6,4);not null;default:0"`
	TotalNetAmount           decimal.Decimal `gorm:"column:total_net_amount;type:numeric(12,3);not null;default:0"`
	TotalGrossAmount         decimal.Decimal `gorm:"column:total_gross_amount;type:numeric(12,3);not null;default:0"`
	UndiscountedTotalNet     decimal.Decimal `gorm:"column:undiscounted_total_net_amount;type:numeric(12,3);not null;default:0"`
	UndiscountedTotalGross   decimal.Decimal `gorm:"column:undiscounted_total_gross_amount;type:numeric(12,3);not null;default:0"`

	// TotalChargedAmount is an aggregate over transaction charges maintained
	// by the payment webhook workflows.
	TotalChargedAmount decimal.Decimal `gorm:"column:total_charged_amount;type:numeric(12,3);not null;default:0"`
	// TotalBalanceAmount is the stored balance used by legacy payment orders.
	TotalBalanceAmount decimal.Decimal `gorm:"column:total_balance_amount;type:numeric(12,3);not null;default:0"`

	PriceExpiration time.Time `gorm:"column:price_expiration;not null"`

	Lines          []OrderLine          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transactions   []TransactionItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments       []Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Fulfillments   []Fulfillment        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	GrantedRefunds []OrderGrantedRefund `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Subtotal returns the cached line subtotal.
func (o *Order) Subtotal() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(o.SubtotalNetAmount, o.Currency),
		Gross: money.New(o.SubtotalGrossAmount, o.Currency),
	}
}

// ShippingPrice returns the cached shipping price.
func (o *Order) ShippingPrice() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(o.ShippingPriceNetAmount, o.Currency),
		Gross: money.New(o.ShippingPriceGrossAmount, o.Currency),
	}
}

// Total returns the cached order total.
func (o *Order) Total() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(o.TotalNetAmount, o.Currency),
		Gross: money.New(o.TotalGrossAmount, o.Currency),
	}
}

// UndiscountedTotal returns the total before order-level discounts.
func (o *Order) UndiscountedTotal() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(o.UndiscountedTotalNet, o.Currency),
		Gross: money.New(o.UndiscountedTotalGross, o.Currency),
	}
}

// TotalGross returns the gross total as tagged money.
func (o *Order) TotalGross() money.Money {
	return money.New(o.TotalGrossAmount, o.Currency)
}

// TotalCharged returns the charged aggregate as tagged money.
func (o *Order) TotalCharged() money.Money {
	return money.New(o.TotalChargedAmount, o.Currency)
}

// StoredBalance returns the legacy stored balance as tagged money.
func (o *Order) StoredBalance() money.Money {
	return money.New(o.TotalBalanceAmount, o.Currency)
}

// PricesExpired reports whether the cached snapshot must be recomputed.
func (o *Order) PricesExpired(now time.Time) bool {
	return !now.Before(o.PriceExpiration)
}
