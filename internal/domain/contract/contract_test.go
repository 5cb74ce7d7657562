package contract

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installmentTerms() Terms {
	return Terms{
		ContractNo:       "HD-2024-001",
		CustomerID:       uuid.New(),
		ServiceType:      ServiceTypeTrademark,
		ContractValue:    decimal.NewFromInt(9000000),
		PaymentType:      PaymentTypeInstallment,
		PrepaidAmount:    decimal.NewFromInt(3000000),
		InstallmentCount: 3,
		IntervalDays:     30,
	}
}

func fullTerms() Terms {
	return Terms{
		ContractNo:    "HD-2024-002",
		CustomerID:    uuid.New(),
		ServiceType:   ServiceTypeCopyright,
		ContractValue: decimal.NewFromInt(5000000),
		PaymentType:   PaymentTypeFull,
	}
}

func createTestContract(t *testing.T) *Contract {
	t.Helper()
	c, err := NewContract(installmentTerms())
	require.NoError(t, err)
	return c
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verrs shared.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	return fields
}

// ==================== Creation ====================

func TestNewContract(t *testing.T) {
	t.Run("installment contract starts processing", func(t *testing.T) {
		c := createTestContract(t)

		assert.Equal(t, StatusProcessing, c.Status)
		assert.Equal(t, 3, c.InstallmentCount)
		assert.Equal(t, 1, c.Version)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeContractCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("full contract is completed immediately", func(t *testing.T) {
		c, err := NewContract(fullTerms())
		require.NoError(t, err)

		assert.Equal(t, StatusCompleted, c.Status)
		assert.False(t, c.IsInstallment())
	})

	t.Run("installment interval defaults to 30 days", func(t *testing.T) {
		terms := installmentTerms()
		terms.IntervalDays = 0
		c, err := NewContract(terms)
		require.NoError(t, err)
		assert.Equal(t, DefaultIntervalDays, c.IntervalDays)
	})

	t.Run("full contract may carry a partial prepaid amount", func(t *testing.T) {
		terms := fullTerms()
		terms.PrepaidAmount = decimal.NewFromInt(1000000)
		_, err := NewContract(terms)
		assert.NoError(t, err)
	})

	t.Run("zero value full contract is allowed", func(t *testing.T) {
		terms := fullTerms()
		terms.ContractValue = decimal.Zero
		c, err := NewContract(terms)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, c.Status)
	})
}

func TestNewContract_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Terms)
		field  string
	}{
		{"missing contract no", func(t *Terms) { t.ContractNo = "  " }, "contract_no"},
		{"missing customer", func(t *Terms) { t.CustomerID = uuid.Nil }, "customer_id"},
		{"unknown service type", func(t *Terms) { t.ServiceType = "patent" }, "service_type"},
		{"unknown payment type", func(t *Terms) { t.PaymentType = "barter" }, "payment_type"},
		{"negative value", func(t *Terms) { t.ContractValue = decimal.NewFromInt(-1) }, "contract_value"},
		{"fractional value", func(t *Terms) { t.ContractValue = decimal.RequireFromString("9000000.5") }, "contract_value"},
		{"negative prepaid", func(t *Terms) { t.PrepaidAmount = decimal.NewFromInt(-5) }, "prepaid_amount"},
		{"prepaid above value", func(t *Terms) { t.PrepaidAmount = decimal.NewFromInt(9000001) }, "prepaid_amount"},
		{"zero installments", func(t *Terms) { t.InstallmentCount = 0 }, "number_of_installments"},
		{"too many installments", func(t *Terms) { t.InstallmentCount = MaxInstallments + 1 }, "number_of_installments"},
		{"negative interval", func(t *Terms) { t.IntervalDays = -1 }, "installment_interval_days"},
		{"value below installment count", func(t *Terms) {
			t.ContractValue = decimal.NewFromInt(2)
			t.PrepaidAmount = decimal.Zero
		}, "contract_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := installmentTerms()
			tt.mutate(&terms)

			_, err := NewContract(terms)
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}

	t.Run("collects several violations at once", func(t *testing.T) {
		terms := installmentTerms()
		terms.ContractNo = ""
		terms.ContractValue = decimal.NewFromInt(-1)
		terms.InstallmentCount = 0

		_, err := NewContract(terms)
		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "contract_no")
		assert.Contains(t, fields, "contract_value")
		assert.Contains(t, fields, "number_of_installments")
	})

	t.Run("full contract ignores installment count", func(t *testing.T) {
		terms := fullTerms()
		terms.InstallmentCount = 0
		_, err := NewContract(terms)
		assert.NoError(t, err)
	})
}

// ==================== Status ====================

func TestContract_RefreshStatus(t *testing.T) {
	t.Run("completes when nothing remains", func(t *testing.T) {
		c := createTestContract(t)
		c.ClearDomainEvents()

		changed := c.RefreshStatus(Summary{RemainingAmount: decimal.Zero})
		assert.True(t, changed)
		assert.Equal(t, StatusCompleted, c.Status)

		types := make([]string, 0)
		for _, e := range c.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Contains(t, types, EventTypeContractStatusChanged)
		assert.Contains(t, types, EventTypeContractCompleted)
	})

	t.Run("stays processing while money remains", func(t *testing.T) {
		c := createTestContract(t)
		assert.False(t, c.RefreshStatus(Summary{RemainingAmount: decimal.NewFromInt(1)}))
		assert.Equal(t, StatusProcessing, c.Status)
	})

	t.Run("reopens a completed contract when money remains", func(t *testing.T) {
		c := createTestContract(t)
		c.Status = StatusCompleted
		assert.True(t, c.RefreshStatus(Summary{RemainingAmount: decimal.NewFromInt(100)}))
		assert.Equal(t, StatusProcessing, c.Status)
	})

	t.Run("never overrides paused", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.Pause())

		assert.False(t, c.RefreshStatus(Summary{RemainingAmount: decimal.Zero}))
		assert.Equal(t, StatusPaused, c.Status)
	})

	t.Run("stale full contract is completed", func(t *testing.T) {
		c, err := NewContract(fullTerms())
		require.NoError(t, err)
		c.Status = StatusPending

		assert.True(t, c.RefreshStatus(Summary{RemainingAmount: c.ContractValue}))
		assert.Equal(t, StatusCompleted, c.Status)
	})
}

func TestContract_PauseResume(t *testing.T) {
	c := createTestContract(t)

	require.NoError(t, c.Pause())
	assert.True(t, c.IsPaused())

	err := c.Pause()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, c.Resume(Summary{RemainingAmount: decimal.Zero}))
	assert.Equal(t, StatusCompleted, c.Status)

	err = c.Resume(Summary{})
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	t.Run("resume with money outstanding goes back to processing", func(t *testing.T) {
		c := createTestContract(t)
		require.NoError(t, c.Pause())
		require.NoError(t, c.Resume(Summary{RemainingAmount: decimal.NewFromInt(6000000)}))
		assert.Equal(t, StatusProcessing, c.Status)
	})
}

func TestContract_UpdateInfo(t *testing.T) {
	c := createTestContract(t)
	value := c.ContractValue

	c.UpdateInfo(nil, "Khách hàng yêu cầu gia hạn")
	assert.Equal(t, "Khách hàng yêu cầu gia hạn", c.Notes)
	assert.True(t, c.ContractValue.Equal(value))
	assert.Equal(t, 2, c.Version)
}

func TestServiceType(t *testing.T) {
	assert.True(t, ServiceTypeTrademark.AllowsMultipleDetails())
	assert.True(t, ServiceTypeCopyright.AllowsMultipleDetails())
	assert.False(t, ServiceTypeInvestment.AllowsMultipleDetails())
	assert.False(t, ServiceType("x").IsValid())
	assert.True(t, StatusPaused.IsValid())
	assert.False(t, Status("archived").IsValid())
}
