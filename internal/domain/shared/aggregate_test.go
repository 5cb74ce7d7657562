package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := NewBaseAggregateRoot()
	assert.NotEqual(t, uuid.Nil, agg.ID)
	assert.Equal(t, 1, agg.GetVersion())
	assert.Empty(t, agg.GetDomainEvents())

	first := NewBaseDomainEvent("ContractCreated", "Contract", agg.ID)
	second := NewBaseDomainEvent("PaymentApplied", "Contract", agg.ID)
	agg.AddDomainEvent(&first)
	agg.AddDomainEvent(&second)

	events := agg.GetDomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, "ContractCreated", events[0].EventType())
	assert.Equal(t, "PaymentApplied", events[1].EventType())
	assert.Equal(t, agg.ID, events[1].AggregateID())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.GetDomainEvents())

	agg.IncrementVersion()
	assert.Equal(t, 2, agg.GetVersion())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	e.UpdatedAt = e.UpdatedAt.Add(-time.Hour)
	e.Touch()
	assert.True(t, e.UpdatedAt.After(e.CreatedAt) || e.UpdatedAt.Equal(e.CreatedAt))
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, DefaultFilter().Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}
