package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	pkgerrors "github.com/avelinelabs/orderfin-backend/pkg/errors"
)

// taxRatePlaces is the stored precision for tax rate fractions (0.2300 = 23%).
const taxRatePlaces = 4

// TaxedMoney pairs a net and a gross amount in one currency.
type TaxedMoney struct {
	Net   Money `json:"net"`
	Gross Money `json:"gross"`
}

// NewTaxed builds a TaxedMoney value, rejecting mixed currencies.
func NewTaxed(net, gross Money) (TaxedMoney, error) {
	if net.Currency() != gross.Currency() {
		return TaxedMoney{}, pkgerrors.New(
			pkgerrors.CodeCurrencyMismatch,
			fmt.Sprintf("taxed money net is %s but gross is %s", net.Currency(), gross.Currency()),
		)
	}
	return TaxedMoney{Net: net, Gross: gross}, nil
}

// ZeroTaxed returns a zero net/gross pair for the currency.
func ZeroTaxed(currency enums.Currency) TaxedMoney {
	return TaxedMoney{Net: Zero(currency), Gross: Zero(currency)}
}

// Currency returns the shared currency tag.
func (t TaxedMoney) Currency() enums.Currency {
	return t.Gross.Currency()
}

// Tax returns gross minus net.
func (t TaxedMoney) Tax() (Money, error) {
	return t.Gross.Sub(t.Net)
}

// Quantize rounds both amounts to the currency's minor-unit precision.
func (t TaxedMoney) Quantize() TaxedMoney {
	return TaxedMoney{Net: t.Net.Quantize(), Gross: t.Gross.Quantize()}
}

// QuantizeTaxRate rounds a tax rate fraction to its stored precision.
func QuantizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(taxRatePlaces)
}
