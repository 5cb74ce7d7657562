package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// recordingHandler remembers every event it was given
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func testContract() *contract.Contract {
	return &contract.Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNo:        "HD-2026-001",
		CustomerID:        uuid.New(),
		ServiceType:       contract.ServiceTypeTrademark,
		PaymentType:       contract.PaymentTypeInstallment,
		ContractValue:     decimal.NewFromInt(30_000_000),
	}
}

func completedEvent() *contract.ContractCompletedEvent {
	return contract.NewContractCompletedEvent(testContract(), contract.Summary{TotalPaid: decimal.NewFromInt(30_000_000)})
}

func paymentEvent() *contract.PaymentAppliedEvent {
	c := testContract()
	log := &contract.PaymentLog{
		ID:            uuid.New(),
		ContractID:    c.ID,
		InstallmentID: uuid.New(),
		AmountPaid:    decimal.NewFromInt(5_000_000),
	}
	return contract.NewPaymentAppliedEvent(c, log, contract.Summary{RemainingAmount: decimal.NewFromInt(20_000_000)})
}
