package telemetry

import (
	"context"
	"errors"

	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// PaymentMetrics subscribes to contract events and counts business activity
type PaymentMetrics struct {
	created   metric.Int64Counter
	completed metric.Int64Counter
	applied   metric.Int64Counter
	amount    metric.Float64Histogram
}

func NewPaymentMetrics(meter metric.Meter) (*PaymentMetrics, error) {
	m := &PaymentMetrics{}
	var errs [4]error
	m.created, errs[0] = meter.Int64Counter("contracts_created_total",
		metric.WithDescription("Contracts created by service and payment type"), metric.WithUnit("{contract}"))
	m.completed, errs[1] = meter.Int64Counter("contracts_completed_total",
		metric.WithDescription("Contracts whose installments are all paid"), metric.WithUnit("{contract}"))
	m.applied, errs[2] = meter.Int64Counter("payments_applied_total",
		metric.WithDescription("Payments applied to installments"), metric.WithUnit("{payment}"))
	m.amount, errs[3] = meter.Float64Histogram("payment_amount_vnd",
		metric.WithDescription("Applied payment amounts"), metric.WithUnit("{VND}"),
		metric.WithExplicitBucketBoundaries(PaymentAmountBuckets...))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PaymentMetrics) EventTypes() []string {
	return []string{
		contract.EventTypeContractCreated,
		contract.EventTypeContractCompleted,
		contract.EventTypePaymentApplied,
	}
}

// Handle never fails; events it does not count are ignored
func (m *PaymentMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *contract.ContractCreatedEvent:
		m.created.Add(ctx, 1, metric.WithAttributes(
			AttrServiceType.String(string(e.ServiceType)),
			AttrPaymentType.String(string(e.PaymentType)),
		))
	case *contract.ContractCompletedEvent:
		m.completed.Add(ctx, 1)
	case *contract.PaymentAppliedEvent:
		final := metric.WithAttributes(AttrFinal.Bool(e.Remaining.IsZero()))
		m.applied.Add(ctx, 1, final)
		m.amount.Record(ctx, e.Amount.InexactFloat64(), final)
	}
	return nil
}
