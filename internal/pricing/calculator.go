package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
)

// PricedOrder is the output of a pricing pass: the order with its money
// snapshot recomputed, together with the repriced lines.
type PricedOrder struct {
	Order *models.Order
	Lines []models.OrderLine
}

// Calculator produces a fresh money snapshot for an order. Implementations
// own tax and discount resolution; callers treat the result as opaque and
// only quantize and persist it.
type Calculator interface {
	Calculate(ctx context.Context, order *models.Order, lines []models.OrderLine) (*PricedOrder, error)
}

// lineSumCalculator prices an order from its line unit prices: line totals
// are unit price times quantity, the subtotal is the sum of line totals and
// the order total adds the shipping price on top.
type lineSumCalculator struct{}

// NewLineSumCalculator builds the default calculator.
func NewLineSumCalculator() Calculator {
	return &lineSumCalculator{}
}

func (c *lineSumCalculator) Calculate(ctx context.Context, order *models.Order, lines []models.OrderLine) (*PricedOrder, error) {
	if order == nil {
		return nil, fmt.Errorf("order required")
	}

	priced := *order
	pricedLines := make([]models.OrderLine, len(lines))

	subtotalNet := decimal.Zero
	subtotalGross := decimal.Zero
	undiscountedNet := decimal.Zero
	undiscountedGross := decimal.Zero

	for i := range lines {
		line := lines[i]
		if line.Currency != order.Currency {
			return nil, fmt.Errorf("line %s currency %s does not match order currency %s", line.ID, line.Currency, order.Currency)
		}
		quantity := decimal.NewFromInt(int64(line.Quantity))
		line.TotalPriceNetAmount = line.UnitPriceNetAmount.Mul(quantity)
		line.TotalPriceGrossAmount = line.UnitPriceGrossAmount.Mul(quantity)
		if !line.UnitPriceNetAmount.IsZero() {
			line.TaxRate = line.UnitPriceGrossAmount.Div(line.UnitPriceNetAmount).Sub(decimal.NewFromInt(1))
		}

		subtotalNet = subtotalNet.Add(line.TotalPriceNetAmount)
		subtotalGross = subtotalGross.Add(line.TotalPriceGrossAmount)
		undiscountedNet = undiscountedNet.Add(line.UndiscountedUnitPriceNetAmount.Mul(quantity))
		undiscountedGross = undiscountedGross.Add(line.UndiscountedUnitPriceGrossAmount.Mul(quantity))
		pricedLines[i] = line
	}

	priced.SubtotalNetAmount = subtotalNet
	priced.SubtotalGrossAmount = subtotalGross
	priced.TotalNetAmount = subtotalNet.Add(priced.ShippingPriceNetAmount)
	priced.TotalGrossAmount = subtotalGross.Add(priced.ShippingPriceGrossAmount)
	priced.UndiscountedTotalNet = undiscountedNet.Add(priced.ShippingPriceNetAmount)
	priced.UndiscountedTotalGross = undiscountedGross.Add(priced.ShippingPriceGrossAmount)
	if !priced.ShippingPriceNetAmount.IsZero() {
		priced.ShippingTaxRate = priced.ShippingPriceGrossAmount.Div(priced.ShippingPriceNetAmount).Sub(decimal.NewFromInt(1))
	}

	return &PricedOrder{Order: &priced, Lines: pricedLines}, nil
}
