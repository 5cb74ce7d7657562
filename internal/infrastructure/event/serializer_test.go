package event

import (
	"testing"

	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAllEvents(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	assert.Equal(t, []string{
		contract.EventTypeContractCompleted,
		contract.EventTypeContractCreated,
		contract.EventTypeContractStatusChanged,
		contract.EventTypeContractUpdated,
		partner.EventTypeCustomerCreated,
		partner.EventTypeCustomerStatusChanged,
		partner.EventTypeCustomerUpdated,
		contract.EventTypePaymentApplied,
	}, s.RegisteredTypes())
}

func TestEventSerializer_CustomerStatusChanged(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	c, err := partner.NewCustomer(partner.CustomerProfile{
		Code: "KH-0001",
		Name: "Cong ty Minh Long",
		Type: partner.CustomerTypeCompany,
	})
	require.NoError(t, err)
	original := partner.NewCustomerStatusChangedEvent(c, partner.CustomerStatusApproved, partner.CustomerStatusPending)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize(partner.EventTypeCustomerStatusChanged, data)
	require.NoError(t, err)
	got, ok := decoded.(*partner.CustomerStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "KH-0001", got.Code)
	assert.Equal(t, partner.CustomerStatusPending, got.NewStatus)
	assert.Equal(t, original.EventID(), got.EventID())
}

func TestEventSerializer_RegisterReplaces(t *testing.T) {
	s := NewEventSerializer()
	s.Register("Probe", func() shared.DomainEvent { return &contract.ContractUpdatedEvent{} })
	s.Register("Probe", func() shared.DomainEvent { return &contract.ContractCompletedEvent{} })

	decoded, err := s.Deserialize("Probe", []byte(`{}`))
	require.NoError(t, err)
	assert.IsType(t, &contract.ContractCompletedEvent{}, decoded)
	assert.Equal(t, []string{"Probe"}, s.RegisteredTypes())
}

func TestEventSerializer_PaymentApplied(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	original := paymentEvent()
	data, err := s.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"contract_no":"HD-2026-001"`)
	assert.Contains(t, string(data), `"amount":"5000000"`)

	decoded, err := s.Deserialize(contract.EventTypePaymentApplied, data)
	require.NoError(t, err)

	got, ok := decoded.(*contract.PaymentAppliedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, original.InstallmentID, got.InstallmentID)
	assert.True(t, original.Remaining.Equal(got.Remaining))
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	_, err := s.Deserialize("InvoiceExported", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize(contract.EventTypeContractCompleted, []byte(`{not json`))
	assert.ErrorContains(t, err, "failed to unmarshal")
}
