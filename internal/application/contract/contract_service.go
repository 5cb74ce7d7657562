package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// prepaidNote is written on the payment log of the amount received at signing
const prepaidNote = "Tiền trả trước"

// ObjectRemover deletes stored files; used to drop certificates of removed records
type ObjectRemover interface {
	DeleteObject(ctx context.Context, key string) error
}

// ContractService handles the contract payment lifecycle
type ContractService struct {
	scope          TransactionScope
	repos          Repositories
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	objects        ObjectRemover
	logger         *zap.Logger
	now            func() time.Time
}

// NewContractService creates a new ContractService
func NewContractService(scope TransactionScope, repos Repositories, logger *zap.Logger) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		scope:  scope,
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on payments
func (s *ContractService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	s.idempotencyTTL = ttl
}

// SetObjectRemover sets the storage used to drop certificates of deleted records
func (s *ContractService) SetObjectRemover(objects ObjectRemover) {
	s.objects = objects
}

// Create opens a contract. The contract, its service details, its schedule,
// the prepaid payment log, the customer status and the history row are written
// in one transaction.
func (s *ContractService) Create(ctx context.Context, actor Actor, req CreateContractRequest) (*ContractDetailResponse, error) {
	var errs shared.ValidationErrors
	signed := parseDate(&errs, "signed_date", req.SignedDate)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	prepaid := decimal.Zero
	if req.PrepaidAmount != nil {
		prepaid = *req.PrepaidAmount
	}

	c, err := contract.NewContract(contract.Terms{
		ContractNo:       req.ContractNo,
		CustomerID:       req.CustomerID,
		ServiceType:      contract.ServiceType(req.ServiceType),
		ContractValue:    req.ContractValue,
		PaymentType:      contract.PaymentType(req.PaymentType),
		PrepaidAmount:    prepaid,
		InstallmentCount: req.InstallmentCount,
		IntervalDays:     req.IntervalDays,
		SignedDate:       signed,
		Notes:            req.Notes,
		CreatedBy:        actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	details, err := req.ServiceDetailsInput.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := details.Validate(c.ServiceType); err != nil {
		return nil, err
	}
	details.BindTo(c.ID)

	now := s.now()
	var schedule []*contract.PaymentInstallment
	if c.IsInstallment() {
		schedule, err = contract.GenerateInstallments(c, now)
		if err != nil {
			return nil, err
		}
	}
	items := flatten(schedule)
	summary := contract.Summarize(c.ContractValue, items)
	c.RefreshStatus(summary)

	var customer *partner.Customer
	var logs []contract.PaymentLog
	err = s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		customer, err = tx.CustomerRepo().FindByID(ctx, c.CustomerID)
		if err != nil {
			return err
		}

		exists, err := tx.ContractRepo().ExistsByContractNo(ctx, c.ContractNo)
		if err != nil {
			return err
		}
		if exists {
			return contract.ErrDuplicateContractNo
		}

		if err := tx.ContractRepo().Save(ctx, c); err != nil {
			return err
		}
		if err := tx.ServiceDetailRepo().Replace(ctx, c.ID, details); err != nil {
			return err
		}
		if len(schedule) > 0 {
			if err := tx.InstallmentRepo().CreateBatch(ctx, schedule); err != nil {
				return err
			}
			logs, err = logPrepaid(ctx, tx, schedule, now, actor)
			if err != nil {
				return err
			}
		}

		customer.MarkPending()
		if err := tx.CustomerRepo().Save(ctx, customer); err != nil {
			return err
		}

		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionCreated, nil, snapshot(c)))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("contract_no", c.ContractNo),
		zap.String("payment_type", string(c.PaymentType)),
		zap.String("contract_value", c.ContractValue.String()),
		zap.Int("installments", len(schedule)))

	s.publishEvents(ctx, c)
	s.publishEvents(ctx, customer)

	response := ContractDetailResponse{
		ContractResponse: withCustomer(ToContractResponse(c), customer),
		Installments:     ToInstallmentResponses(items, now),
		Summary:          summary,
		ServiceDetails:   toServiceDetailsResponse(details),
		PaymentLogs:      ToPaymentLogResponses(logs),
		History:          []HistoryResponse{},
	}
	return &response, nil
}

// GetByID returns the full contract page. A stale status is corrected and saved.
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*ContractDetailResponse, error) {
	c, items, summary, err := s.loadAndRefresh(ctx, id)
	if err != nil {
		return nil, err
	}

	customer, err := s.repos.Customers.FindByID(ctx, c.CustomerID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	details, err := s.repos.ServiceDetails.Load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repos.PaymentLogs.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.repos.Histories.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	response := ContractDetailResponse{
		ContractResponse: withCustomer(ToContractResponse(c), customer),
		Installments:     ToInstallmentResponses(items, s.now()),
		Summary:          summary,
		ServiceDetails:   toServiceDetailsResponse(details),
		PaymentLogs:      ToPaymentLogResponses(logs),
		History:          ToHistoryResponses(history),
	}
	return &response, nil
}

// GetSummary derives the money figures of a contract. A stale status is corrected and saved.
func (s *ContractService) GetSummary(ctx context.Context, id uuid.UUID) (*SummaryResponse, error) {
	c, _, summary, err := s.loadAndRefresh(ctx, id)
	if err != nil {
		return nil, err
	}
	response := toSummaryResponse(c, summary)
	return &response, nil
}

// List returns contracts newest first. Query matches contract number, customer code or customer name.
func (s *ContractService) List(ctx context.Context, filter ContractListFilter) ([]ContractResponse, int64, error) {
	domainFilter := contract.DefaultContractFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Query = filter.Query
	domainFilter.Status = contract.Status(filter.Status)
	domainFilter.ServiceType = contract.ServiceType(filter.ServiceType)
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewValidationError("customer_id", "Invalid UUID format")
		}
		domainFilter.CustomerID = &customerID
	}

	contracts, err := s.repos.Contracts.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Contracts.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	customers := make(map[uuid.UUID]*partner.Customer)
	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		customer, seen := customers[c.CustomerID]
		if !seen {
			customer, err = s.repos.Customers.FindByID(ctx, c.CustomerID)
			if err != nil && !shared.IsNotFound(err) {
				return nil, 0, err
			}
			customers[c.CustomerID] = customer
		}
		responses[i] = withCustomer(ToContractResponse(c), customer)
	}

	return responses, total, nil
}

// Update edits the signed date, notes and service details of a contract.
// Files of detail records that were dropped are removed from storage after commit.
func (s *ContractService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	var errs shared.ValidationErrors
	signed := parseDate(&errs, "signed_date", req.SignedDate)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	details, err := req.ServiceDetailsInput.ToDomain()
	if err != nil {
		return nil, err
	}

	var c *contract.Contract
	var orphaned []string
	err = s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		c, err = tx.ContractRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := details.Validate(c.ServiceType); err != nil {
			return err
		}

		current, err := tx.ServiceDetailRepo().Load(ctx, c.ID)
		if err != nil {
			return err
		}
		orphaned = carryFiles(current, details)
		details.BindTo(c.ID)

		before := snapshot(c)
		c.UpdateInfo(signed, req.Notes)
		if err := tx.ContractRepo().Save(ctx, c); err != nil {
			return err
		}
		if err := tx.ServiceDetailRepo().Replace(ctx, c.ID, details); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionUpdated, before, snapshot(c)))
	})
	if err != nil {
		return nil, err
	}

	s.removeObjects(ctx, orphaned)
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Delete removes a contract together with its schedule, logs, details and history
func (s *ContractService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	var keys []string
	err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		c, err := tx.ContractRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		details, err := tx.ServiceDetailRepo().Load(ctx, c.ID)
		if err != nil {
			return err
		}
		keys = details.CertificateKeys()
		return tx.ContractRepo().Delete(ctx, c.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("contract deleted",
		zap.String("contract_id", id.String()),
		zap.String("user", actor.Username))
	s.removeObjects(ctx, keys)
	return nil
}

// Pause stops a contract; the automatic status rule leaves it alone until resumed
func (s *ContractService) Pause(ctx context.Context, actor Actor, id uuid.UUID) (*ContractResponse, error) {
	return s.transition(ctx, actor, id, func(c *contract.Contract, _ contract.Summary) error {
		return c.Pause()
	})
}

// Resume lifts a pause and re-derives the status from the money collected
func (s *ContractService) Resume(ctx context.Context, actor Actor, id uuid.UUID) (*ContractResponse, error) {
	return s.transition(ctx, actor, id, func(c *contract.Contract, summary contract.Summary) error {
		return c.Resume(summary)
	})
}

// ListHistory returns the history of a contract, newest first
func (s *ContractService) ListHistory(ctx context.Context, id uuid.UUID) ([]HistoryResponse, error) {
	if _, err := s.repos.Contracts.FindByID(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.repos.Histories.FindByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponses(rows), nil
}

func (s *ContractService) transition(ctx context.Context, actor Actor, id uuid.UUID, apply func(*contract.Contract, contract.Summary) error) (*ContractResponse, error) {
	var c *contract.Contract
	err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
		var err error
		c, err = tx.ContractRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		items, err := tx.InstallmentRepo().FindByContract(ctx, c.ID)
		if err != nil {
			return err
		}

		old := c.Status
		if err := apply(c, contract.Summarize(c.ContractValue, items)); err != nil {
			return err
		}
		if err := tx.ContractRepo().Save(ctx, c); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, statusHistory(c, actor, old))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract status changed",
		zap.String("contract_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.String("user", actor.Username))
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// loadAndRefresh reads a contract with its schedule and persists the derived status when it is stale
func (s *ContractService) loadAndRefresh(ctx context.Context, id uuid.UUID) (*contract.Contract, []contract.PaymentInstallment, contract.Summary, error) {
	c, err := s.repos.Contracts.FindByID(ctx, id)
	if err != nil {
		return nil, nil, contract.Summary{}, err
	}
	items, err := s.repos.Installments.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, nil, contract.Summary{}, err
	}

	summary := contract.Summarize(c.ContractValue, items)
	old := c.Status
	if c.RefreshStatus(summary) {
		err := s.scope.Execute(ctx, func(tx TransactionalRepositories) error {
			if err := tx.ContractRepo().Save(ctx, c); err != nil {
				return err
			}
			return tx.HistoryRepo().Create(ctx, statusHistory(c, Actor{Username: "system"}, old))
		})
		if err != nil {
			return nil, nil, contract.Summary{}, err
		}
		s.logger.Info("stale contract status corrected",
			zap.String("contract_id", c.ID.String()),
			zap.String("old_status", string(old)),
			zap.String("status", string(c.Status)))
		s.publishEvents(ctx, c)
	}

	return c, items, summary, nil
}

func (s *ContractService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if agg == nil {
		return
	}
	if s.eventPublisher != nil {
		for _, event := range agg.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err))
			}
		}
	}
	agg.ClearDomainEvents()
}

func (s *ContractService) removeObjects(ctx context.Context, keys []string) {
	if s.objects == nil {
		return
	}
	for _, key := range keys {
		if err := s.objects.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
		}
	}
}

// logPrepaid writes one payment log per installment seeded with prepaid money
func logPrepaid(ctx context.Context, tx TransactionalRepositories, schedule []*contract.PaymentInstallment, at time.Time, actor Actor) ([]contract.PaymentLog, error) {
	logs := make([]contract.PaymentLog, 0, 1)
	for _, inst := range schedule {
		if !inst.PaidAmount.IsPositive() {
			continue
		}
		log, err := contract.NewPaymentLog(inst, inst.PaidAmount, at, prepaidNote, actor.UserID)
		if err != nil {
			return nil, err
		}
		if err := tx.PaymentLogRepo().Create(ctx, log); err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, nil
}

// carryFiles keeps the stored file keys (and ids of one-to-one records) of records
// that survive an update, and returns the keys of records that were dropped.
func carryFiles(current, next *contract.ServiceDetails) []string {
	if current == nil {
		return nil
	}

	trademarks := make(map[uuid.UUID]contract.TrademarkService, len(current.Trademarks))
	for _, t := range current.Trademarks {
		trademarks[t.ID] = t
	}
	for i := range next.Trademarks {
		if old, ok := trademarks[next.Trademarks[i].ID]; ok {
			next.Trademarks[i].CertificateKey = old.CertificateKey
			next.Trademarks[i].ImageKey = old.ImageKey
			delete(trademarks, old.ID)
		}
	}

	copyrights := make(map[uuid.UUID]contract.CopyrightService, len(current.Copyrights))
	for _, c := range current.Copyrights {
		copyrights[c.ID] = c
	}
	for i := range next.Copyrights {
		if old, ok := copyrights[next.Copyrights[i].ID]; ok {
			next.Copyrights[i].CertificateKey = old.CertificateKey
			delete(copyrights, old.ID)
		}
	}

	var orphaned []string
	drop := func(keys ...string) {
		for _, k := range keys {
			if k != "" {
				orphaned = append(orphaned, k)
			}
		}
	}
	for _, t := range trademarks {
		drop(t.CertificateKey, t.ImageKey)
	}
	for _, c := range copyrights {
		drop(c.CertificateKey)
	}

	switch {
	case current.BusinessRegistration != nil && next.BusinessRegistration != nil:
		next.BusinessRegistration.ID = current.BusinessRegistration.ID
		next.BusinessRegistration.CertificateKey = current.BusinessRegistration.CertificateKey
	case current.BusinessRegistration != nil:
		drop(current.BusinessRegistration.CertificateKey)
	}
	switch {
	case current.Investment != nil && next.Investment != nil:
		next.Investment.ID = current.Investment.ID
		next.Investment.CertificateKey = current.Investment.CertificateKey
	case current.Investment != nil:
		drop(current.Investment.CertificateKey)
	}
	switch {
	case current.Other != nil && next.Other != nil:
		next.Other.ID = current.Other.ID
		next.Other.CertificateKey = current.Other.CertificateKey
	case current.Other != nil:
		drop(current.Other.CertificateKey)
	}

	return orphaned
}

func statusHistory(c *contract.Contract, actor Actor, old contract.Status) *contract.History {
	return contract.NewHistory(c.ID, actor.Username, contract.ActionStatusChanged,
		map[string]string{"status": string(old)},
		map[string]string{"status": string(c.Status)})
}

// snapshot is the JSON shape stored in history rows
func snapshot(c *contract.Contract) map[string]any {
	return map[string]any{
		"contract_no":    c.ContractNo,
		"service_type":   c.ServiceType,
		"contract_value": c.ContractValue.String(),
		"payment_type":   c.PaymentType,
		"prepaid_amount": c.PrepaidAmount.String(),
		"installments":   c.InstallmentCount,
		"status":         c.Status,
		"signed_date":    c.SignedDate,
		"notes":          c.Notes,
	}
}

func withCustomer(r ContractResponse, customer *partner.Customer) ContractResponse {
	if customer != nil {
		r.CustomerCode = customer.Code
		r.CustomerName = customer.Name
	}
	return r
}

func flatten(items []*contract.PaymentInstallment) []contract.PaymentInstallment {
	flat := make([]contract.PaymentInstallment, 0, len(items))
	for _, it := range items {
		flat = append(flat, *it)
	}
	return flat
}
