package event

import (
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
)

// RegisterAllEvents registers every event published on the bus
func RegisterAllEvents(serializer *EventSerializer) {
	for eventType, factory := range map[string]EventFactory{
		contract.EventTypeContractCreated:       func() shared.DomainEvent { return &contract.ContractCreatedEvent{} },
		contract.EventTypeContractUpdated:       func() shared.DomainEvent { return &contract.ContractUpdatedEvent{} },
		contract.EventTypeContractStatusChanged: func() shared.DomainEvent { return &contract.ContractStatusChangedEvent{} },
		contract.EventTypeContractCompleted:     func() shared.DomainEvent { return &contract.ContractCompletedEvent{} },
		contract.EventTypePaymentApplied:        func() shared.DomainEvent { return &contract.PaymentAppliedEvent{} },
		partner.EventTypeCustomerCreated:        func() shared.DomainEvent { return &partner.CustomerCreatedEvent{} },
		partner.EventTypeCustomerUpdated:        func() shared.DomainEvent { return &partner.CustomerUpdatedEvent{} },
		partner.EventTypeCustomerStatusChanged:  func() shared.DomainEvent { return &partner.CustomerStatusChangedEvent{} },
	} {
		serializer.Register(eventType, factory)
	}
}
