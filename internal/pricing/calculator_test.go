package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
)

func TestLineSumCalculatorAggregates(t *testing.T) {
	order := testOrder(time.Now())
	order.ShippingPriceNetAmount = amount("4")
	order.ShippingPriceGrossAmount = amount("4.84")
	lines := []models.OrderLine{
		{
			ID:                               uuid.New(),
			OrderID:                          order.ID,
			Quantity:                         2,
			Currency:                         enums.CurrencyUSD,
			UnitPriceNetAmount:               amount("10"),
			UnitPriceGrossAmount:             amount("12.10"),
			UndiscountedUnitPriceNetAmount:   amount("12"),
			UndiscountedUnitPriceGrossAmount: amount("14.52"),
		},
		{
			ID:                               uuid.New(),
			OrderID:                          order.ID,
			Quantity:                         1,
			Currency:                         enums.CurrencyUSD,
			UnitPriceNetAmount:               amount("5"),
			UnitPriceGrossAmount:             amount("6.05"),
			UndiscountedUnitPriceNetAmount:   amount("5"),
			UndiscountedUnitPriceGrossAmount: amount("6.05"),
		},
	}

	priced, err := NewLineSumCalculator().Calculate(context.Background(), order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !priced.Order.SubtotalNetAmount.Equal(amount("25")) {
		t.Fatalf("expected subtotal net 25, got %s", priced.Order.SubtotalNetAmount)
	}
	if !priced.Order.SubtotalGrossAmount.Equal(amount("30.25")) {
		t.Fatalf("expected subtotal gross 30.25, got %s", priced.Order.SubtotalGrossAmount)
	}
	if !priced.Order.TotalGrossAmount.Equal(amount("35.09")) {
		t.Fatalf("expected total gross 35.09, got %s", priced.Order.TotalGrossAmount)
	}
	if !priced.Order.UndiscountedTotalGross.Equal(amount("39.93")) {
		t.Fatalf("expected undiscounted gross 39.93, got %s", priced.Order.UndiscountedTotalGross)
	}
	if !priced.Order.ShippingTaxRate.Equal(amount("0.21")) {
		t.Fatalf("expected shipping tax rate 0.21, got %s", priced.Order.ShippingTaxRate)
	}
	if !priced.Lines[0].TotalPriceGrossAmount.Equal(amount("24.20")) {
		t.Fatalf("expected line total 24.20, got %s", priced.Lines[0].TotalPriceGrossAmount)
	}
}

func TestLineSumCalculatorRejectsMixedCurrency(t *testing.T) {
	order := testOrder(time.Now())
	lines := []models.OrderLine{
		{ID: uuid.New(), OrderID: order.ID, Quantity: 1, Currency: enums.CurrencyEUR},
	}

	if _, err := NewLineSumCalculator().Calculate(context.Background(), order, lines); err == nil {
		t.Fatal("expected error for mismatched line currency")
	}
}

func TestLineSumCalculatorDoesNotMutateInput(t *testing.T) {
	order := testOrder(time.Now())
	lines := []models.OrderLine{
		{
			ID:                   uuid.New(),
			OrderID:              order.ID,
			Quantity:             2,
			Currency:             enums.CurrencyUSD,
			UnitPriceNetAmount:   amount("10"),
			UnitPriceGrossAmount: amount("12.10"),
		},
	}

	_, err := NewLineSumCalculator().Calculate(context.Background(), order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.SubtotalNetAmount.IsZero() {
		t.Fatal("input order must not be mutated")
	}
	if !lines[0].TotalPriceNetAmount.IsZero() {
		t.Fatal("input lines must not be mutated")
	}
}
