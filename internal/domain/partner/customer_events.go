package partner

import (
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/shared"
)

const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated       = "CustomerCreated"
	EventTypeCustomerUpdated       = "CustomerUpdated"
	EventTypeCustomerStatusChanged = "CustomerStatusChanged"
)

// Every customer event carries the customer code so audit readers can
// identify the client without a lookup.
type (
	CustomerCreatedEvent struct {
		shared.BaseDomainEvent
		CustomerID uuid.UUID    `json:"customer_id"`
		Code       string       `json:"code"`
		Name       string       `json:"name"`
		Type       CustomerType `json:"type"`
	}

	CustomerUpdatedEvent struct {
		shared.BaseDomainEvent
		CustomerID uuid.UUID `json:"customer_id"`
		Code       string    `json:"code"`
		Name       string    `json:"name"`
	}

	CustomerStatusChangedEvent struct {
		shared.BaseDomainEvent
		CustomerID uuid.UUID      `json:"customer_id"`
		Code       string         `json:"code"`
		OldStatus  CustomerStatus `json:"old_status"`
		NewStatus  CustomerStatus `json:"new_status"`
	}
)

func customerEnvelope(eventType string, c *Customer) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID)
}

func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: customerEnvelope(EventTypeCustomerCreated, c),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            c.Type,
	}
}

func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: customerEnvelope(EventTypeCustomerUpdated, c),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
	}
}

func NewCustomerStatusChangedEvent(c *Customer, oldStatus, newStatus CustomerStatus) *CustomerStatusChangedEvent {
	return &CustomerStatusChangedEvent{
		BaseDomainEvent: customerEnvelope(EventTypeCustomerStatusChanged, c),
		CustomerID:      c.ID,
		Code:            c.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
