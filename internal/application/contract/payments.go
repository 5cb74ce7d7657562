package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GenerateInstallments rebuilds the schedule of an installment contract.
// The old schedule (and the logs hanging off it) is replaced in one transaction;
// prepaid money is seeded and logged again. A schedule that has received payments
// beyond the prepaid amount is never discarded.
func (s *ContractService) GenerateInstallments(ctx context.Context, actor Actor, contractID uuid.UUID) (_ []InstallmentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "generate_installments",
		telemetry.SpanAttrContractID, contractID.String())
	defer span.End()
	defer func() { telemetry.RecordError(span, err) }()

	now := s.now()
	var c *contract.Contract
	var schedule []*contract.PaymentInstallment
	err = s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		c, err = tx.ContractRepo().FindByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !c.IsInstallment() {
			return contract.ErrNotInstallmentContract
		}

		existing, err := tx.InstallmentRepo().FindByContract(ctx, c.ID)
		if err != nil {
			return err
		}
		paid := contract.Summarize(c.ContractValue, existing).TotalPaid
		if len(existing) > 0 && !paid.Equal(c.PrepaidAmount) {
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				"Installments that already received payments cannot be regenerated")
		}

		schedule, err = contract.GenerateInstallments(c, now)
		if err != nil {
			return err
		}
		if err := tx.InstallmentRepo().DeleteByContract(ctx, c.ID); err != nil {
			return err
		}
		if err := tx.InstallmentRepo().CreateBatch(ctx, schedule); err != nil {
			return err
		}
		if _, err := logPrepaid(ctx, tx, schedule, now, actor); err != nil {
			return err
		}

		old := c.Status
		if c.RefreshStatus(contract.Summarize(c.ContractValue, flatten(schedule))) {
			if err := tx.ContractRepo().Save(ctx, c); err != nil {
				return err
			}
			if err := tx.HistoryRepo().Create(ctx, statusHistory(c, actor, old)); err != nil {
				return err
			}
		}

		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionScheduleGenerated,
			map[string]int{"installments": len(existing)},
			map[string]int{"installments": len(schedule)}))
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrInstallments, len(schedule))
	s.logger.Info("installments generated",
		zap.String("contract_id", c.ID.String()),
		zap.Int("count", len(schedule)))
	s.publishEvents(ctx, c)

	return ToInstallmentResponses(flatten(schedule), now), nil
}

// ListInstallments returns the schedule of a contract ordered by installment number
func (s *ContractService) ListInstallments(ctx context.Context, contractID uuid.UUID) ([]InstallmentResponse, error) {
	if _, err := s.repos.Contracts.FindByID(ctx, contractID); err != nil {
		return nil, err
	}
	items, err := s.repos.Installments.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return ToInstallmentResponses(items, s.now()), nil
}

// ApplyPayment books money against one installment. The installment update,
// the log append and the status refresh happen in one transaction.
// A repeated Idempotency-Key is rejected with DUPLICATE_REQUEST.
func (s *ContractService) ApplyPayment(ctx context.Context, actor Actor, installmentID uuid.UUID, req ApplyPaymentRequest) (result *PaymentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "apply_payment")
	defer span.End()
	defer func() { telemetry.RecordError(span, err) }()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInstallmentID, installmentID.String(),
		telemetry.SpanAttrAmount, req.Amount,
	)

	if err := contract.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := "payment:" + installmentID.String() + ":" + req.IdempotencyKey
		claimed, claimErr := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if claimErr != nil {
			return nil, claimErr
		}
		if !claimed {
			s.logger.Warn("duplicate payment request rejected",
				zap.String("installment_id", installmentID.String()),
				zap.String("idempotency_key", req.IdempotencyKey))
			return nil, shared.ErrDuplicateRequest
		}
		defer func() {
			if err != nil {
				if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
					s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
				}
			}
		}()
	}

	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	return s.settle(ctx, actor, installmentID, contract.ActionPaymentApplied,
		func(inst *contract.PaymentInstallment) (*contract.PaymentLog, error) {
			if err := inst.ApplyPayment(req.Amount, paidAt); err != nil {
				return nil, err
			}
			return contract.NewPaymentLog(inst, req.Amount, paidAt, req.Notes, actor.UserID)
		})
}

// MarkInstallmentPaid settles an installment in one step and logs only the
// amount that was still outstanding. Paid installments are rejected.
func (s *ContractService) MarkInstallmentPaid(ctx context.Context, actor Actor, installmentID uuid.UUID) (result *PaymentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "mark_installment_paid",
		telemetry.SpanAttrInstallmentID, installmentID.String())
	defer span.End()
	defer func() { telemetry.RecordError(span, err) }()

	paidAt := s.now()
	return s.settle(ctx, actor, installmentID, contract.ActionInstallmentMarked,
		func(inst *contract.PaymentInstallment) (*contract.PaymentLog, error) {
			delta, err := inst.MarkPaid(paidAt)
			if err != nil {
				return nil, err
			}
			return contract.NewPaymentLog(inst, delta, paidAt, "Đánh dấu đã thanh toán", actor.UserID)
		})
}

// UpdateInstallment adjusts the face amount, due date or notes of one installment.
// An amount change is balanced against the last other unpaid installment so the
// schedule keeps adding up to the contract value.
func (s *ContractService) UpdateInstallment(ctx context.Context, actor Actor, installmentID uuid.UUID, req UpdateInstallmentRequest) (*InstallmentResponse, error) {
	var errs shared.ValidationErrors
	var due *time.Time
	if req.DueDate != nil {
		due = parseDate(&errs, "due_date", *req.DueDate)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	var c *contract.Contract
	var inst *contract.PaymentInstallment
	err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		c, inst, err = lockInstallment(ctx, tx, installmentID)
		if err != nil {
			return err
		}

		before := installmentSnapshot(inst)
		var absorber *contract.PaymentInstallment
		if req.Amount != nil {
			absorber, err = adjustAmount(ctx, tx, c, inst, *req.Amount, now)
			if err != nil {
				return err
			}
		}
		if req.DueDate != nil || req.Notes != nil {
			if req.DueDate == nil {
				due = inst.DueDate
			}
			notes := inst.Notes
			if req.Notes != nil {
				notes = *req.Notes
			}
			inst.Reschedule(due, notes)
		}
		if err := tx.InstallmentRepo().Save(ctx, inst); err != nil {
			return err
		}
		after := installmentSnapshot(inst)
		if absorber != nil {
			if err := tx.InstallmentRepo().Save(ctx, absorber); err != nil {
				return err
			}
			after["rebalanced_installment_no"] = absorber.InstallmentNo
			after["rebalanced_amount"] = absorber.Amount.String()
		}

		if err := s.refreshInTx(ctx, tx, c, actor); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionInstallmentUpdated,
			before, after))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, c)
	response := ToInstallmentResponse(inst, now)
	return &response, nil
}

// ListPaymentLogs returns the payment log of a contract, oldest first
func (s *ContractService) ListPaymentLogs(ctx context.Context, contractID uuid.UUID) ([]PaymentLogResponse, error) {
	if _, err := s.repos.Contracts.FindByID(ctx, contractID); err != nil {
		return nil, err
	}
	logs, err := s.repos.PaymentLogs.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return ToPaymentLogResponses(logs), nil
}

// MarkInvoiceExported flags a payment log as invoiced; a second call is rejected
func (s *ContractService) MarkInvoiceExported(ctx context.Context, actor Actor, logID uuid.UUID) (*PaymentLogResponse, error) {
	var log *contract.PaymentLog
	err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		log, err = tx.PaymentLogRepo().FindByID(ctx, logID)
		if err != nil {
			return err
		}
		if err := log.MarkInvoiceExported(s.now()); err != nil {
			return err
		}
		if err := tx.PaymentLogRepo().UpdateInvoiceFlag(ctx, log); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, contract.NewHistory(log.ContractID, actor.Username, contract.ActionInvoiceExported,
			nil, map[string]string{"payment_log_id": log.ID.String(), "amount_paid": log.AmountPaid.String()}))
	})
	if err != nil {
		return nil, err
	}

	response := ToPaymentLogResponse(log)
	return &response, nil
}

// settle runs a money-moving mutation on an installment and books its log
func (s *ContractService) settle(
	ctx context.Context,
	actor Actor,
	installmentID uuid.UUID,
	action contract.HistoryAction,
	mutate func(*contract.PaymentInstallment) (*contract.PaymentLog, error),
) (*PaymentResult, error) {
	var c *contract.Contract
	var inst *contract.PaymentInstallment
	var log *contract.PaymentLog
	var summary contract.Summary

	err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		c, inst, err = lockInstallment(ctx, tx, installmentID)
		if err != nil {
			return err
		}

		log, err = mutate(inst)
		if err != nil {
			return err
		}
		if err := tx.InstallmentRepo().Save(ctx, inst); err != nil {
			return err
		}
		if err := tx.PaymentLogRepo().Create(ctx, log); err != nil {
			return err
		}

		items, err := tx.InstallmentRepo().FindByContract(ctx, c.ID)
		if err != nil {
			return err
		}
		summary = contract.Summarize(c.ContractValue, items)
		old := c.Status
		if c.RefreshStatus(summary) {
			if err := tx.ContractRepo().Save(ctx, c); err != nil {
				return err
			}
			if err := tx.HistoryRepo().Create(ctx, statusHistory(c, actor, old)); err != nil {
				return err
			}
		}
		c.AddDomainEvent(contract.NewPaymentAppliedEvent(c, log, summary))

		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, action, nil, map[string]any{
			"installment_no": inst.InstallmentNo,
			"amount":         log.AmountPaid.String(),
			"paid_amount":    inst.PaidAmount.String(),
			"remaining":      summary.RemainingAmount.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	telemetry.AddEvent(trace.SpanFromContext(ctx), "payment_booked",
		telemetry.SpanAttrContractID, c.ID.String(),
		telemetry.SpanAttrAmount, log.AmountPaid,
		"status", string(c.Status),
	)
	s.logger.Info("payment applied",
		zap.String("contract_id", c.ID.String()),
		zap.String("installment_id", inst.ID.String()),
		zap.Int("installment_no", inst.InstallmentNo),
		zap.String("amount", log.AmountPaid.String()),
		zap.String("remaining", summary.RemainingAmount.String()),
		zap.String("status", string(c.Status)))
	s.publishEvents(ctx, c)

	logResponse := ToPaymentLogResponse(log)
	return &PaymentResult{
		Installment: ToInstallmentResponse(inst, s.now()),
		PaymentLog:  &logResponse,
		Summary:     toSummaryResponse(c, summary),
	}, nil
}

// refreshInTx re-derives and saves the contract status inside a transaction
func (s *ContractService) refreshInTx(ctx context.Context, tx TransactionalRepositories, c *contract.Contract, actor Actor) error {
	items, err := tx.InstallmentRepo().FindByContract(ctx, c.ID)
	if err != nil {
		return err
	}
	old := c.Status
	if !c.RefreshStatus(contract.Summarize(c.ContractValue, items)) {
		return nil
	}
	if err := tx.ContractRepo().Save(ctx, c); err != nil {
		return err
	}
	return tx.HistoryRepo().Create(ctx, statusHistory(c, actor, old))
}

// lockInstallment locks the owning contract first, then the installment,
// so every payment path takes row locks in the same order.
func lockInstallment(ctx context.Context, tx TransactionalRepositories, installmentID uuid.UUID) (*contract.Contract, *contract.PaymentInstallment, error) {
	row, err := tx.InstallmentRepo().FindByID(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}
	c, err := tx.ContractRepo().FindByIDForUpdate(ctx, row.ContractID)
	if err != nil {
		return nil, nil, err
	}
	inst, err := tx.InstallmentRepo().FindByIDForUpdate(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}
	return c, inst, nil
}

// adjustAmount loads the rest of the schedule (the locked contract row keeps it
// stable) and rebalances it around the new amount of inst
func adjustAmount(ctx context.Context, tx TransactionalRepositories, c *contract.Contract, inst *contract.PaymentInstallment, amount decimal.Decimal, now time.Time) (*contract.PaymentInstallment, error) {
	items, err := tx.InstallmentRepo().FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	schedule := make([]*contract.PaymentInstallment, 0, len(items))
	for i := range items {
		if items[i].ID == inst.ID {
			schedule = append(schedule, inst)
			continue
		}
		schedule = append(schedule, &items[i])
	}
	return contract.AdjustInSchedule(schedule, inst, amount, c.ContractValue, now)
}

func installmentSnapshot(i *contract.PaymentInstallment) map[string]any {
	return map[string]any{
		"installment_no": i.InstallmentNo,
		"amount":         i.Amount.String(),
		"paid_amount":    i.PaidAmount.String(),
		"due_date":       i.DueDate,
		"notes":          i.Notes,
	}
}
