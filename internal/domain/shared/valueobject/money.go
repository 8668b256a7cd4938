package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default reporting currency)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	JPY Currency = "JPY" // Japanese Yen
	AED Currency = "AED" // UAE Dirham
	SAR Currency = "SAR" // Saudi Riyal
)

// DefaultCurrency is the fallback base currency for tenants that have not
// configured one.
const DefaultCurrency = USD

// NormalizeCurrency upper-cases a currency code for comparison and storage.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// IsValid reports whether the code is one of the supported currencies.
func (c Currency) IsValid() bool {
	switch c {
	case USD, EUR, GBP, JPY, AED, SAR:
		return true
	}
	return false
}

// Round2 rounds a decimal to currency precision (2 places, half away from
// zero). All journal amounts and document totals are stored at this
// precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round6 rounds a decimal to unit-cost precision (6 places). Per-unit costs
// carry extra precision so repeated draw-downs do not drift.
func Round6(d decimal.Decimal) decimal.Decimal {
	return d.Round(6)
}

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// MoneyIn tags an amount with a stored currency code, falling back to the
// default currency when the code is empty.
func MoneyIn(amount decimal.Decimal, code string) Money {
	currency := NormalizeCurrency(code)
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money with the difference.
// Returns error if currencies don't match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Convert converts the amount into the target currency at the given rate,
// rounded to cents. Rates are per-document snapshots; no revaluation happens
// after a document is posted.
func (m Money) Convert(rate decimal.Decimal, target Currency) Money {
	return Money{amount: Round2(m.amount.Mul(rate)), currency: target}
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
