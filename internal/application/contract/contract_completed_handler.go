package contract

import (
	"context"
	"fmt"

	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContractCompletedHandler handles ContractCompletedEvent
// and moves the customer to completed once every one of its contracts is completed
type ContractCompletedHandler struct {
	contractRepo contract.ContractRepository
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewContractCompletedHandler creates a new handler for contract completed events
func NewContractCompletedHandler(
	contractRepo contract.ContractRepository,
	customerRepo partner.CustomerRepository,
	logger *zap.Logger,
) *ContractCompletedHandler {
	return &ContractCompletedHandler{
		contractRepo: contractRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ContractCompletedHandler) EventTypes() []string {
	return []string{contract.EventTypeContractCompleted}
}

// Handle processes a ContractCompletedEvent
func (h *ContractCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*contract.ContractCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", contract.EventTypeContractCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			contract.EventTypeContractCompleted, event.EventType())
	}

	h.logger.Info("processing contract completed event",
		zap.String("contract_id", completed.AggregateID().String()),
		zap.String("contract_no", completed.ContractNo),
		zap.String("customer_id", completed.CustomerID.String()),
		zap.String("total_paid", completed.TotalPaid.String()),
	)

	contracts, err := h.contractRepo.FindByCustomer(ctx, completed.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load contracts of customer: %w", err)
	}
	for _, c := range contracts {
		if c.Status != contract.StatusCompleted {
			h.logger.Debug("customer still has open contracts, keeping status",
				zap.String("customer_id", completed.CustomerID.String()),
				zap.String("open_contract", c.ContractNo))
			return nil
		}
	}

	customer, err := h.customerRepo.FindByID(ctx, completed.CustomerID)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("customer of completed contract no longer exists",
				zap.String("customer_id", completed.CustomerID.String()))
			return nil
		}
		return err
	}
	if customer.Status == partner.CustomerStatusCompleted {
		return nil
	}

	if err := customer.ChangeStatus(partner.CustomerStatusCompleted); err != nil {
		return err
	}
	if err := h.customerRepo.Save(ctx, customer); err != nil {
		h.logger.Error("failed to mark customer completed",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err))
		return err
	}

	h.logger.Info("customer completed",
		zap.String("customer_id", customer.ID.String()),
		zap.String("customer_code", customer.Code))
	return nil
}

// Ensure ContractCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ContractCompletedHandler)(nil)
