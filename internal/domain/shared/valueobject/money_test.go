package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(9000000), VND)
		require.NoError(t, err)
		assert.Equal(t, VND, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(9000000)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("1500000", VND)
		require.NoError(t, err)
		assert.Equal(t, int64(1500000), m.Amount().IntPart())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("abc", VND)
		assert.Error(t, err)
	})
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyVNDFromInt(3000000)
	b := NewMoneyVNDFromInt(1000000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(4000000), sum.Amount().IntPart())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), diff.Amount().IntPart())

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoney_Split(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		parts  int
		places int32
		want   []string
	}{
		{"even split", "9000000", 3, 2, []string{"3000000", "3000000", "3000000"}},
		{"remainder on last part", "10000000", 3, 2, []string{"3333333.33", "3333333.33", "3333333.34"}},
		{"whole units", "10000000", 6, 0, []string{"1666666", "1666666", "1666666", "1666666", "1666666", "1666670"}},
		{"single part", "5000000", 1, 2, []string{"5000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, VND)
			require.NoError(t, err)

			parts, err := m.Split(tt.parts, tt.places)
			require.NoError(t, err)
			require.Len(t, parts, tt.parts)

			total := decimal.Zero
			for i, p := range parts {
				assert.True(t, p.Amount().Equal(decimal.RequireFromString(tt.want[i])),
					"part %d: got %s want %s", i, p.Amount(), tt.want[i])
				total = total.Add(p.Amount())
			}
			assert.True(t, total.Equal(m.Amount()))
		})
	}

	t.Run("rejects zero parts", func(t *testing.T) {
		_, err := NewMoneyVNDFromInt(100).Split(0, 2)
		assert.Error(t, err)
	})
}

func TestMoney_PercentOf(t *testing.T) {
	paid := NewMoneyVNDFromInt(3000000)
	total := NewMoneyVNDFromInt(9000000)

	assert.Equal(t, "33.33", paid.PercentOf(total).String())
	assert.True(t, paid.PercentOf(Zero(VND)).IsZero())
	assert.Equal(t, "100", total.PercentOf(total).String())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "9000000 VND", NewMoneyVNDFromInt(9000000).String())
	usd, _ := NewMoneyFromString("12.5", USD)
	assert.Equal(t, "12.50 USD", usd.String())
}

func TestMoney_RoundToCurrency(t *testing.T) {
	m, _ := NewMoneyFromString("3333333.33", VND)
	assert.Equal(t, int64(3333333), m.RoundToCurrency().Amount().IntPart())
	assert.True(t, m.RoundToCurrency().Amount().Equal(decimal.NewFromInt(3333333)))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(NewMoneyVNDFromInt(500))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"500","currency":"VND"}`, string(data))
}

func TestMoney_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"string", "3000000", 3000000},
		{"bytes", []byte("42"), 42},
		{"int64", int64(7), 7},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, m.Scan(tt.value))
			assert.Equal(t, tt.want, m.Amount().IntPart())
			assert.Equal(t, DefaultCurrency, m.Currency())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan("x"))
	})
}
