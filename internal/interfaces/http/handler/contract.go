package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/ipshield/backend/internal/application/contract"
)

// IdempotencyKeyHeader lets clients retry a payment without applying it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// ContractService is the part of contract.ContractService the handlers use
type ContractService interface {
	Create(ctx context.Context, actor contractapp.Actor, req contractapp.CreateContractRequest) (*contractapp.ContractDetailResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*contractapp.ContractDetailResponse, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*contractapp.SummaryResponse, error)
	List(ctx context.Context, filter contractapp.ContractListFilter) ([]contractapp.ContractResponse, int64, error)
	Update(ctx context.Context, actor contractapp.Actor, id uuid.UUID, req contractapp.UpdateContractRequest) (*contractapp.ContractResponse, error)
	Delete(ctx context.Context, actor contractapp.Actor, id uuid.UUID) error
	Pause(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.ContractResponse, error)
	Resume(ctx context.Context, actor contractapp.Actor, id uuid.UUID) (*contractapp.ContractResponse, error)
	ListHistory(ctx context.Context, id uuid.UUID) ([]contractapp.HistoryResponse, error)

	GenerateInstallments(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID) ([]contractapp.InstallmentResponse, error)
	ListInstallments(ctx context.Context, contractID uuid.UUID) ([]contractapp.InstallmentResponse, error)
	ApplyPayment(ctx context.Context, actor contractapp.Actor, installmentID uuid.UUID, req contractapp.ApplyPaymentRequest) (*contractapp.PaymentResult, error)
	MarkInstallmentPaid(ctx context.Context, actor contractapp.Actor, installmentID uuid.UUID) (*contractapp.PaymentResult, error)
	UpdateInstallment(ctx context.Context, actor contractapp.Actor, installmentID uuid.UUID, req contractapp.UpdateInstallmentRequest) (*contractapp.InstallmentResponse, error)
	ListPaymentLogs(ctx context.Context, contractID uuid.UUID) ([]contractapp.PaymentLogResponse, error)
	MarkInvoiceExported(ctx context.Context, actor contractapp.Actor, logID uuid.UUID) (*contractapp.PaymentLogResponse, error)
}

// ContractHandler handles contract, installment and payment log endpoints
type ContractHandler struct {
	BaseHandler
	contractService ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create opens a contract, seeding its installment schedule.
// POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req contractapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	detail, err := h.contractService.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, detail)
}

// GetByID returns the full contract page.
// GET /contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.contractService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// GetSummary returns the derived money picture of a contract.
// GET /contracts/:id/summary
func (h *ContractHandler) GetSummary(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.contractService.GetSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// List returns a page of contracts. It also serves GET /contracts/search.
// GET /contracts?q=&status=&service_type=&customer_id=
func (h *ContractHandler) List(c *gin.Context) {
	var filter contractapp.ContractListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contracts, total, page, pageSize)
}

// Update edits the signed date, notes and service details.
// PUT /contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req contractapp.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Delete removes a contract with everything attached to it.
// DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.contractService.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Pause freezes the status of a contract.
// POST /contracts/:id/pause
func (h *ContractHandler) Pause(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.Pause(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// Resume lifts a pause and re-derives the status.
// POST /contracts/:id/resume
func (h *ContractHandler) Resume(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.Resume(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// ListHistory returns the audit trail of a contract.
// GET /contracts/:id/history
func (h *ContractHandler) ListHistory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	rows, err := h.contractService.ListHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// GenerateInstallments rebuilds the schedule of an installment contract.
// POST /contracts/:id/installments/generate
func (h *ContractHandler) GenerateInstallments(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.contractService.GenerateInstallments(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, items)
}

// ListInstallments returns the schedule of a contract.
// GET /contracts/:id/installments
func (h *ContractHandler) ListInstallments(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.contractService.ListInstallments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ApplyPayment records money received against an installment.
// POST /installments/:id/payments
func (h *ContractHandler) ApplyPayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req contractapp.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	result, err := h.contractService.ApplyPayment(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// MarkInstallmentPaid settles the outstanding balance of an installment.
// POST /installments/:id/mark-paid
func (h *ContractHandler) MarkInstallmentPaid(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.contractService.MarkInstallmentPaid(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateInstallment adjusts the amount, due date or notes of an installment.
// PATCH /installments/:id
func (h *ContractHandler) UpdateInstallment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req contractapp.UpdateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.contractService.UpdateInstallment(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListPaymentLogs returns every payment received for a contract.
// GET /contracts/:id/payment-logs
func (h *ContractHandler) ListPaymentLogs(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	logs, err := h.contractService.ListPaymentLogs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// MarkInvoiceExported flags a payment as invoiced.
// POST /payment-logs/:id/invoice-export
func (h *ContractHandler) MarkInvoiceExported(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	log, err := h.contractService.MarkInvoiceExported(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, log)
}
