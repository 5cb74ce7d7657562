package contract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/partner"
	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockContractRepository is a mock implementation of ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByContractNo(ctx context.Context, contractNo string) (*contract.Contract, error) {
	args := m.Called(ctx, contractNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) ExistsByContractNo(ctx context.Context, contractNo string) (bool, error) {
	args := m.Called(ctx, contractNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter contract.ContractFilter) ([]contract.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Count(ctx context.Context, filter contract.ContractFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]contract.Contract, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInstallmentRepository is a mock implementation of InstallmentRepository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.PaymentInstallment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.PaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.PaymentInstallment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.PaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.PaymentInstallment, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]contract.PaymentInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) Save(ctx context.Context, inst *contract.PaymentInstallment) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, items []*contract.PaymentInstallment) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockInstallmentRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	args := m.Called(ctx, contractID)
	return args.Error(0)
}

// MockPaymentLogRepository is a mock implementation of PaymentLogRepository
type MockPaymentLogRepository struct {
	mock.Mock
}

func (m *MockPaymentLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.PaymentLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.PaymentLog), args.Error(1)
}

func (m *MockPaymentLogRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.PaymentLog, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]contract.PaymentLog), args.Error(1)
}

func (m *MockPaymentLogRepository) FindByInstallment(ctx context.Context, installmentID uuid.UUID) ([]contract.PaymentLog, error) {
	args := m.Called(ctx, installmentID)
	return args.Get(0).([]contract.PaymentLog), args.Error(1)
}

func (m *MockPaymentLogRepository) Create(ctx context.Context, log *contract.PaymentLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockPaymentLogRepository) UpdateInvoiceFlag(ctx context.Context, log *contract.PaymentLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, h *contract.History) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]contract.History, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]contract.History), args.Error(1)
}

// MockServiceDetailRepository is a mock implementation of ServiceDetailRepository
type MockServiceDetailRepository struct {
	mock.Mock
}

func (m *MockServiceDetailRepository) Load(ctx context.Context, contractID uuid.UUID) (*contract.ServiceDetails, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.ServiceDetails), args.Error(1)
}

func (m *MockServiceDetailRepository) Replace(ctx context.Context, contractID uuid.UUID, details *contract.ServiceDetails) error {
	args := m.Called(ctx, contractID, details)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Lookup(ctx context.Context, query string, limit int) ([]partner.Customer, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// recordingRemover collects deleted object keys
type recordingRemover struct {
	keys []string
}

func (r *recordingRemover) DeleteObject(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

// =============================================================================
// Fixtures
// =============================================================================

type testRepos struct {
	contracts    *MockContractRepository
	installments *MockInstallmentRepository
	logs         *MockPaymentLogRepository
	histories    *MockHistoryRepository
	details      *MockServiceDetailRepository
	customers    *MockCustomerRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		contracts:    new(MockContractRepository),
		installments: new(MockInstallmentRepository),
		logs:         new(MockPaymentLogRepository),
		histories:    new(MockHistoryRepository),
		details:      new(MockServiceDetailRepository),
		customers:    new(MockCustomerRepository),
	}
}

func (r *testRepos) bundle() Repositories {
	return Repositories{
		Contracts:      r.contracts,
		Installments:   r.installments,
		PaymentLogs:    r.logs,
		Histories:      r.histories,
		ServiceDetails: r.details,
		Customers:      r.customers,
	}
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.contracts.AssertExpectations(t)
	r.installments.AssertExpectations(t)
	r.logs.AssertExpectations(t)
	r.histories.AssertExpectations(t)
	r.details.AssertExpectations(t)
	r.customers.AssertExpectations(t)
}

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestService(r *testRepos) (*ContractService, *recordingPublisher) {
	svc := NewContractService(NewNoOpTransactionScope(r.bundle()), r.bundle(), nil)
	svc.now = func() time.Time { return fixedNow }
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)
	return svc, pub
}
