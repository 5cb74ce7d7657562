package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/application/certificate"
	contractapp "github.com/ipshield/backend/internal/application/contract"
	"github.com/ipshield/backend/internal/application/identity"
	partnerapp "github.com/ipshield/backend/internal/application/partner"
	"github.com/ipshield/backend/internal/interfaces/http/dto"
	"github.com/ipshield/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	testUserID   = uuid.MustParse("6f1c1c1e-0d7b-4d0e-9a53-0f2a8b1e9c01")
	testUsername = "ketoan"
)

// authenticated simulates the JWT middleware
func authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, testUserID.String())
		c.Set(middleware.JWTUsernameKey, testUsername)
		c.Next()
	}
}

func testActor() contractapp.Actor {
	id := testUserID
	return contractapp.Actor{UserID: &id, Username: testUsername}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decodeData re-decodes the data member into a typed value
func decodeData(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// =============================================================================
// Service mocks
// =============================================================================

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input identity.RefreshTokenInput) (*identity.Tokens, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tokens), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input identity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*identity.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, input identity.ChangePasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) GetDetail(ctx context.Context, id uuid.UUID) (*partnerapp.CustomerDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerDetailResponse), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, filter partnerapp.CustomerListFilter) ([]partnerapp.CustomerResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partnerapp.CustomerResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerService) Lookup(ctx context.Context, query string) ([]partnerapp.CustomerLookupResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partnerapp.CustomerLookupResponse), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, id uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) ChangeStatus(ctx context.Context, id uuid.UUID, req partnerapp.ChangeStatusRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) Create(ctx context.Context, actor contractapp.Actor, req contractapp.CreateContractRequest) (*contractapp.ContractDetailResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractDetailResponse), args.Error(1)
}

func (m *MockContractService) GetByID(ctx context.Context, id uuid.UUID) (*contractapp.ContractDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractDetailResponse), args.Error(1)
}

func (m *MockContractService) GetSummary(ctx context.Context, id uuid.UUID) (*contractapp.SummaryResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.SummaryResponse), args.Error(1)
}

func (m *MockContractService) List(ctx context.Context, filter contractapp.ContractListFilter) ([]contractapp.ContractResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]contractapp.ContractResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractService) Update(ctx context.Context, actor contractapp.Actor, id uuid.UUID, req contractapp.UpdateContractRequest) (*contractapp.ContractResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractResponse), args.Error(1)
}

func (m *MockContractService) Delete(ctx context.Context, actor contractapp.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockContractService) Pause(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.ContractResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractResponse), args.Error(1)
}

func (m *MockContractService) Resume(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.ContractResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.ContractResponse), args.Error(1)
}

func (m *MockContractService) ListHistory(ctx context.Context, id uuid.UUID) ([]contractapp.HistoryResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contractapp.HistoryResponse), args.Error(1)
}

func (m *MockContractService) GenerateInstallments(ctx context.Context, actor contractapp.Actor, id uuid.UUID) ([]contractapp.InstallmentResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contractapp.InstallmentResponse), args.Error(1)
}

func (m *MockContractService) ListInstallments(ctx context.Context, id uuid.UUID) ([]contractapp.InstallmentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contractapp.InstallmentResponse), args.Error(1)
}

func (m *MockContractService) ApplyPayment(ctx context.Context, actor contractapp.Actor, id uuid.UUID, req contractapp.ApplyPaymentRequest) (*contractapp.PaymentResult, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.PaymentResult), args.Error(1)
}

func (m *MockContractService) MarkInstallmentPaid(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.PaymentResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.PaymentResult), args.Error(1)
}

func (m *MockContractService) UpdateInstallment(ctx context.Context, actor contractapp.Actor, id uuid.UUID, req contractapp.UpdateInstallmentRequest) (*contractapp.InstallmentResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.InstallmentResponse), args.Error(1)
}

func (m *MockContractService) ListPaymentLogs(ctx context.Context, id uuid.UUID) ([]contractapp.PaymentLogResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contractapp.PaymentLogResponse), args.Error(1)
}

func (m *MockContractService) MarkInvoiceExported(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.PaymentLogResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractapp.PaymentLogResponse), args.Error(1)
}

type MockCertificateService struct {
	mock.Mock
}

func (m *MockCertificateService) RequestUpload(ctx context.Context, contractID uuid.UUID, req certificate.UploadRequest) (*certificate.UploadResponse, error) {
	args := m.Called(ctx, contractID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*certificate.UploadResponse), args.Error(1)
}

func (m *MockCertificateService) ConfirmUpload(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, req certificate.ConfirmRequest) (*certificate.FileResponse, error) {
	args := m.Called(ctx, actor, contractID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*certificate.FileResponse), args.Error(1)
}

func (m *MockCertificateService) Download(ctx context.Context, contractID uuid.UUID, kind certificate.Kind, detailID *uuid.UUID) (*certificate.FileResponse, error) {
	args := m.Called(ctx, contractID, kind, detailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*certificate.FileResponse), args.Error(1)
}

func (m *MockCertificateService) Delete(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, kind certificate.Kind, detailID *uuid.UUID) error {
	return m.Called(ctx, actor, contractID, kind, detailID).Error(0)
}

var (
	_ AuthService        = (*MockAuthService)(nil)
	_ CustomerService    = (*MockCustomerService)(nil)
	_ ContractService    = (*MockContractService)(nil)
	_ CertificateService = (*MockCertificateService)(nil)
)
