// Package valueobject holds immutable domain values.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	VND Currency = "VND"
	USD Currency = "USD"

	DefaultCurrency = VND
)

var hundred = decimal.NewFromInt(100)

// MinorUnits is how many decimal places amounts in c are booked with.
// Dong has no subunit in practice.
func (c Currency) MinorUnits() int32 {
	if c == VND {
		return 0
	}
	return 2
}

// Money pairs an amount with its currency. Operations never mutate the
// receiver.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount, currency}, nil
}

func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

func NewMoneyVND(amount decimal.Decimal) Money {
	return Money{amount, VND}
}

func NewMoneyVNDFromInt(dong int64) Money {
	return Money{decimal.NewFromInt(dong), VND}
}

func Zero(currency Currency) Money {
	return Money{decimal.Zero, currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(other.amount)), nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(other.amount)), nil
}

func (m Money) Round(places int32) Money {
	return m.with(m.amount.Round(places))
}

func (m Money) RoundToCurrency() Money {
	return m.Round(m.currency.MinorUnits())
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(m.currency.MinorUnits()) + " " + string(m.currency)
}

// Split cuts m into n parts truncated to places. Every part but the last
// is equal; the last absorbs the truncation so the parts sum to m exactly.
func (m Money) Split(n int, places int32) ([]Money, error) {
	if n <= 0 {
		return nil, errors.New("parts must be positive")
	}
	share := m.amount.Div(decimal.NewFromInt(int64(n))).Truncate(places)
	parts := make([]Money, n)
	for i := range parts[:n-1] {
		parts[i] = m.with(share)
	}
	parts[n-1] = m.with(m.amount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1)))))
	return parts, nil
}

// PercentOf is m as a percentage of total, to two places. A zero total gives 0.
func (m Money) PercentOf(total Money) decimal.Decimal {
	if total.amount.IsZero() {
		return decimal.Zero
	}
	return m.amount.Mul(hundred).Div(total.amount).Round(2)
}

func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount, m.currency}
}

func (m Money) sameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s %s to %s", op, other.currency, m.currency)
	}
	return nil
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{m.amount.String(), m.currency})
}

// Value stores the amount only; columns hold dong.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads a numeric column. NULL reads as zero; the currency falls back
// to DefaultCurrency.
func (m *Money) Scan(value any) error {
	m.amount = decimal.Zero
	if value != nil {
		if err := m.amount.Scan(value); err != nil {
			return fmt.Errorf("cannot scan %T into Money: %w", value, err)
		}
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
