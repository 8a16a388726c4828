package types

import (
	"fmt"
	"math"
	"strings"
)

// Money represents a monetary value with currency.
// Immutable value object - all operations return new instances.
type Money struct {
	amount   int64  // Amount in smallest currency unit (cents)
	currency string // ISO 4217 currency code
}

func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return Money{}, ErrCurrencyRequired
	}
	if len(currency) != 3 {
		return Money{}, ErrCurrencyInvalid
	}
	return Money{amount: amount, currency: currency}, nil
}

func MustNewMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return MustNewMoney(0, currency)
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s and %s: %w", m.currency, other.currency, ErrCurrencyMismatch)
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return Money{}, fmt.Errorf("%s + %s: %w", m, other, ErrAmountOverflow)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s: %w", other.currency, m.currency, ErrCurrencyMismatch)
	}
	if (other.amount < 0 && m.amount > math.MaxInt64+other.amount) ||
		(other.amount > 0 && m.amount < math.MinInt64+other.amount) {
		return Money{}, fmt.Errorf("%s - %s: %w", m, other, ErrAmountOverflow)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Multiply scales m by factor, failing instead of wrapping around.
func (m Money) Multiply(factor int64) (Money, error) {
	if m.amount == 0 || factor == 0 {
		return Money{amount: 0, currency: m.currency}, nil
	}
	product := m.amount * factor
	if product/factor != m.amount || (m.amount == -1 && factor == math.MinInt64) || (factor == -1 && m.amount == math.MinInt64) {
		return Money{}, fmt.Errorf("%s x %d: %w", m, factor, ErrAmountOverflow)
	}
	return Money{amount: product, currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

// String renders the amount in major units, e.g. "12.50 USD".
func (m Money) String() string {
	sign := ""
	amount := m.amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.currency)
}
