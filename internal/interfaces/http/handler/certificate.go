package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contractapp "github.com/ipshield/backend/internal/application/contract"
	"github.com/ipshield/backend/internal/application/certificate"
)

// CertificateService is the part of certificate.Service the handler uses
type CertificateService interface {
	RequestUpload(ctx context.Context, contractID uuid.UUID, req certificate.UploadRequest) (*certificate.UploadResponse, error)
	ConfirmUpload(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, req certificate.ConfirmRequest) (*certificate.FileResponse, error)
	Download(ctx context.Context, contractID uuid.UUID, kind certificate.Kind, detailID *uuid.UUID) (*certificate.FileResponse, error)
	Delete(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, kind certificate.Kind, detailID *uuid.UUID) error
}

// CertificateHandler hands out presigned URLs for contract files
type CertificateHandler struct {
	BaseHandler
	certificateService CertificateService
}

// NewCertificateHandler creates a new CertificateHandler
func NewCertificateHandler(certificateService CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// fileQuery addresses a file slot in the query string
type fileQuery struct {
	Kind     string `form:"kind" binding:"required,oneof=certificate trademark_image"`
	DetailID string `form:"detail_id" binding:"omitempty,uuid"`
}

func (q fileQuery) detailID() *uuid.UUID {
	if q.DetailID == "" {
		return nil
	}
	id := uuid.MustParse(q.DetailID)
	return &id
}

// RequestUpload returns a presigned PUT URL.
// POST /contracts/:id/certificates/upload-url
func (h *CertificateHandler) RequestUpload(c *gin.Context) {
	contractID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req certificate.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.certificateService.RequestUpload(c.Request.Context(), contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmUpload attaches an uploaded object to its service detail.
// POST /contracts/:id/certificates/confirm
func (h *CertificateHandler) ConfirmUpload(c *gin.Context) {
	contractID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req certificate.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	file, err := h.certificateService.ConfirmUpload(c.Request.Context(), actorFromContext(c), contractID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Download returns a presigned GET URL.
// GET /contracts/:id/certificates/download?kind=&detail_id=
func (h *CertificateHandler) Download(c *gin.Context) {
	contractID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var q fileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	file, err := h.certificateService.Download(c.Request.Context(), contractID, certificate.Kind(q.Kind), q.detailID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Delete detaches a file and removes the object.
// DELETE /contracts/:id/certificates?kind=&detail_id=
func (h *CertificateHandler) Delete(c *gin.Context) {
	contractID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var q fileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	err := h.certificateService.Delete(c.Request.Context(), actorFromContext(c), contractID, certificate.Kind(q.Kind), q.detailID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
