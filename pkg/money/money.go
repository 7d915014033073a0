package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	pkgerrors "github.com/avelinelabs/orderfin-backend/pkg/errors"
)

// Money is an amount tagged with its currency. Arithmetic is defined only
// between values of the same currency; combining mismatched currencies
// fails with a CURRENCY_MISMATCH error instead of producing a silent sum.
type Money struct {
	amount   decimal.Decimal
	currency enums.Currency
}

// New builds a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency enums.Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Zero returns the zero value for the given currency. It is the only valid
// fold seed for monetary sums.
func Zero(currency enums.Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// FromFloat builds a Money value from a float, for test fixtures and config.
func FromFloat(amount float64, currency enums.Currency) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: currency}
}

// Amount returns the raw decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency tag.
func (m Money) Currency() enums.Currency {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns m + other, failing when the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other, failing when the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Cmp compares m against other: -1 when smaller, 0 when equal, 1 when larger.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether two values share currency and amount.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Quantize rounds the amount half-up to the currency's minor-unit precision.
func (m Money) Quantize() Money {
	return Money{amount: m.amount.Round(m.currency.MinorUnits()), currency: m.currency}
}

// Neg returns the negated amount in the same currency.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Max returns the larger of a and b.
func Max(a, b Money) (Money, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return Money{}, err
	}
	if cmp >= 0 {
		return a, nil
	}
	return b, nil
}

// Min returns the smaller of a and b.
func Min(a, b Money) (Money, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return Money{}, err
	}
	if cmp <= 0 {
		return a, nil
	}
	return b, nil
}

// Sum folds the given values starting from the zero of the currency.
func Sum(currency enums.Currency, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, value := range values {
		next, err := total.Add(value)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total, nil
}

func (m Money) sameCurrency(other Money) error {
	if m.currency == other.currency {
		return nil
	}
	return pkgerrors.New(
		pkgerrors.CodeCurrencyMismatch,
		fmt.Sprintf("cannot combine %s with %s", m.currency, other.currency),
	)
}

// String renders the quantized amount with its currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.MinorUnits()), m.currency)
}

type moneyJSON struct {
	Amount   string         `json:"amount"`
	Currency enums.Currency `json:"currency"`
}

// MarshalJSON renders the amount as a fixed-precision string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(m.currency.MinorUnits()),
		Currency: m.currency,
	})
}

// UnmarshalJSON parses the string-amount representation.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("parsing money amount %q: %w", raw.Amount, err)
	}
	m.amount = amount
	m.currency = raw.Currency
	return nil
}
