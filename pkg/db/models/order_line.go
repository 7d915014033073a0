package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// OrderLine is a single priced position of an order. Currency is
// denormalized and must always equal the parent order's currency.
type OrderLine struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	ProductName       string         `gorm:"column:product_name;not null"`
	Quantity          int            `gorm:"column:quantity;not null"`
	QuantityFulfilled int            `gorm:"column:quantity_fulfilled;not null;default:0"`
	Currency          enums.Currency `gorm:"column:currency;type:text;not null"`

	UnitPriceNetAmount               decimal.Decimal `gorm:"column:unit_price_net_amount;type:numeric(12,3);not null;default:0"`
	UnitPriceGrossAmount             decimal.Decimal `gorm:"column:unit_price_gross_amount;type:numeric(12,3);not null;default:0"`
	UndiscountedUnitPriceNetAmount   decimal.Decimal `gorm:"column:undiscounted_unit_price_net_amount;type:numeric(12,3);not null;default:0"`
	UndiscountedUnitPriceGrossAmount decimal.Decimal `gorm:"column:undiscounted_unit_price_gross_amount;type:numeric(12,3);not null;default:0"`
	TotalPriceNetAmount              decimal.Decimal `gorm:"column:total_price_net_amount;type:numeric(12,3);not null;default:0"`
	TotalPriceGrossAmount            decimal.Decimal `gorm:"column:total_price_gross_amount;type:numeric(12,3);not null;default:0"`
	TaxRate                          decimal.Decimal `gorm:"column:tax_rate;type:numeric(6,4);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// UnitPrice returns the discounted unit price.
func (l *OrderLine) UnitPrice() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(l.UnitPriceNetAmount, l.Currency),
		Gross: money.New(l.UnitPriceGrossAmount, l.Currency),
	}
}

// UndiscountedUnitPrice returns the unit price before discounts.
func (l *OrderLine) UndiscountedUnitPrice() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(l.UndiscountedUnitPriceNetAmount, l.Currency),
		Gross: money.New(l.UndiscountedUnitPriceGrossAmount, l.Currency),
	}
}

// TotalPrice returns the line total.
func (l *OrderLine) TotalPrice() money.TaxedMoney {
	return money.TaxedMoney{
		Net:   money.New(l.TotalPriceNetAmount, l.Currency),
		Gross: money.New(l.TotalPriceGrossAmount, l.Currency),
	}
}

// QuantityToFulfill returns how many units still await fulfillment.
func (l *OrderLine) QuantityToFulfill() int {
	remaining := l.Quantity - l.QuantityFulfilled
	if remaining < 0 {
		return 0
	}
	return remaining
}
