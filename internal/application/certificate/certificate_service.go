// Package certificate manages certificate files and trademark images attached to contract service details.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	contractapp "github.com/ipshield/backend/internal/application/contract"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/ipshield/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxFileSize is the largest file accepted for upload
const DefaultMaxFileSize int64 = 20 << 20

// allowedContentTypes maps accepted content types to the extension used in storage keys
var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
}

// Kind selects which file slot of a service detail is addressed
type Kind string

const (
	KindCertificate    Kind = "certificate"
	KindTrademarkImage Kind = "trademark_image"
)

// IsValid checks if the kind is a known value
func (k Kind) IsValid() bool {
	return k == KindCertificate || k == KindTrademarkImage
}

// ObjectStorage is the presigned-URL object store holding the files
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, size int64, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Config holds limits for the certificate service
type Config struct {
	MaxFileSize   int64
	PresignExpiry time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxFileSize:   DefaultMaxFileSize,
		PresignExpiry: 15 * time.Minute,
	}
}

// Service hands out presigned URLs and keeps service-detail file keys in sync with storage
type Service struct {
	scope   contractapp.TransactionScope
	repos   contractapp.Repositories
	storage ObjectStorage
	config  Config
	logger  *zap.Logger
}

// NewService creates a new certificate Service
func NewService(scope contractapp.TransactionScope, repos contractapp.Repositories, storage ObjectStorage, config Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}
	return &Service{
		scope:   scope,
		repos:   repos,
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// RequestUpload validates the file and returns a presigned PUT URL with the key to confirm later
func (s *Service) RequestUpload(ctx context.Context, contractID uuid.UUID, req UploadRequest) (*UploadResponse, error) {
	kind := Kind(req.Kind)
	ext, err := s.validateFile(kind, req)
	if err != nil {
		return nil, err
	}

	c, err := s.repos.Contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	details, err := s.repos.ServiceDetails.Load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	slot, err := locate(c.ServiceType, details, kind, req.DetailID)
	if err != nil {
		return nil, err
	}

	key := storageKey(c.ID, slot.detailID, kind, ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, req.FileSize, s.config.PresignExpiry)
	if err != nil {
		s.logger.Error("failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, storageError(err, "UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &UploadResponse{
		UploadURL:  url,
		StorageKey: key,
		DetailID:   slot.detailID,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload stores the uploaded key on the service detail, replacing and deleting any previous file
func (s *Service) ConfirmUpload(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, req ConfirmRequest) (*FileResponse, error) {
	kind := Kind(req.Kind)
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", "must be certificate or trademark_image")
	}
	if !strings.HasPrefix(req.StorageKey, keyPrefix(contractID)) {
		return nil, shared.NewValidationError("storage_key", "does not belong to this contract")
	}

	exists, err := s.storage.ObjectExists(ctx, req.StorageKey)
	if err != nil {
		return nil, storageError(err, "STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first")
	}

	var (
		previous string
		detailID uuid.UUID
	)
	err = s.scope.Execute(ctx, func(tx contractapp.TransactionalRepositories) error {
		c, err := tx.ContractRepo().FindByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		details, err := tx.ServiceDetailRepo().Load(ctx, c.ID)
		if err != nil {
			return err
		}
		slot, err := locate(c.ServiceType, details, kind, req.DetailID)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(req.StorageKey, keyPrefix(c.ID)+slot.detailID.String()+"/") {
			return shared.NewValidationError("storage_key", "does not belong to this service detail")
		}

		previous = *slot.key
		detailID = slot.detailID
		*slot.key = req.StorageKey
		if err := tx.ServiceDetailRepo().Replace(ctx, c.ID, details); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionCertificateUploaded,
			fileChange{DetailID: detailID, Kind: kind, Key: previous},
			fileChange{DetailID: detailID, Kind: kind, Key: req.StorageKey}))
	})
	if err != nil {
		return nil, err
	}

	if previous != "" && previous != req.StorageKey {
		s.removeObject(ctx, previous)
	}

	s.logger.Info("certificate file attached",
		zap.String("contract_id", contractID.String()),
		zap.String("detail_id", detailID.String()),
		zap.String("kind", string(kind)))

	return s.fileResponse(ctx, detailID, kind, req.StorageKey)
}

// Download returns a presigned GET URL for the file in the addressed slot
func (s *Service) Download(ctx context.Context, contractID uuid.UUID, kind Kind, detailID *uuid.UUID) (*FileResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("kind", "must be certificate or trademark_image")
	}

	c, err := s.repos.Contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	details, err := s.repos.ServiceDetails.Load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	slot, err := locate(c.ServiceType, details, kind, detailID)
	if err != nil {
		return nil, err
	}
	if *slot.key == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "No file has been uploaded for this service")
	}

	return s.fileResponse(ctx, slot.detailID, kind, *slot.key)
}

// Delete removes the file in the addressed slot and clears its key
func (s *Service) Delete(ctx context.Context, actor contractapp.Actor, contractID uuid.UUID, kind Kind, detailID *uuid.UUID) error {
	if !kind.IsValid() {
		return shared.NewValidationError("kind", "must be certificate or trademark_image")
	}

	var removed string
	err := s.scope.Execute(ctx, func(tx contractapp.TransactionalRepositories) error {
		c, err := tx.ContractRepo().FindByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		details, err := tx.ServiceDetailRepo().Load(ctx, c.ID)
		if err != nil {
			return err
		}
		slot, err := locate(c.ServiceType, details, kind, detailID)
		if err != nil {
			return err
		}
		if *slot.key == "" {
			return shared.NewDomainError("NOT_FOUND", "No file has been uploaded for this service")
		}

		removed = *slot.key
		*slot.key = ""
		if err := tx.ServiceDetailRepo().Replace(ctx, c.ID, details); err != nil {
			return err
		}
		return tx.HistoryRepo().Create(ctx, contract.NewHistory(c.ID, actor.Username, contract.ActionCertificateDeleted,
			fileChange{DetailID: slot.detailID, Kind: kind, Key: removed}, nil))
	})
	if err != nil {
		return err
	}

	s.removeObject(ctx, removed)
	s.logger.Info("certificate file removed",
		zap.String("contract_id", contractID.String()),
		zap.String("key", removed))
	return nil
}

func (s *Service) validateFile(kind Kind, req UploadRequest) (string, error) {
	var errs shared.ValidationErrors
	if !kind.IsValid() {
		errs.Add("kind", "must be certificate or trademark_image")
	}
	if strings.TrimSpace(req.FileName) == "" {
		errs.Add("file_name", "is required")
	}
	ext, ok := allowedContentTypes[strings.ToLower(req.ContentType)]
	if !ok {
		errs.Add("content_type", "only PDF, PNG, JPEG and WebP files are accepted")
	}
	if kind == KindTrademarkImage && ext == ".pdf" {
		errs.Add("content_type", "trademark image must be an image")
	}
	switch {
	case req.FileSize <= 0:
		errs.Add("file_size", "must be greater than 0")
	case req.FileSize > s.config.MaxFileSize:
		errs.Add("file_size", fmt.Sprintf("must not exceed %d MB", s.config.MaxFileSize>>20))
	}
	return ext, errs.Err()
}

// storageError keeps domain errors raised by the storage backend and wraps anything else
func storageError(err error, code, message string) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return shared.NewDomainError(code, message).WithCause(err)
}

func (s *Service) fileResponse(ctx context.Context, detailID uuid.UUID, kind Kind, key string) (*FileResponse, error) {
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.config.PresignExpiry)
	if err != nil {
		s.logger.Error("failed to presign download", zap.String("key", key), zap.Error(err))
		return nil, storageError(err, "DOWNLOAD_URL_FAILED", "Failed to generate download URL")
	}
	return &FileResponse{
		DetailID:    detailID,
		Kind:        string(kind),
		StorageKey:  key,
		FileName:    path.Base(key),
		DownloadURL: url,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("key", key), zap.Error(err))
	}
}

// fileChange is the history payload of a file slot change
type fileChange struct {
	DetailID uuid.UUID `json:"detail_id"`
	Kind     Kind      `json:"kind"`
	Key      string    `json:"key"`
}

// slot points at the key field of one service detail record
type slot struct {
	detailID uuid.UUID
	key      *string
}

var errDetailRequired = shared.NewValidationError("detail_id", "is required for this service type")

// locate finds the key field addressed by kind and detail id.
// 1:N service types need the detail id; 1:1 types accept it when it matches.
func locate(serviceType contract.ServiceType, details *contract.ServiceDetails, kind Kind, detailID *uuid.UUID) (*slot, error) {
	if kind == KindTrademarkImage && serviceType != contract.ServiceTypeTrademark {
		return nil, shared.NewValidationError("kind", "only trademark contracts carry an image")
	}

	matches := func(id uuid.UUID) bool {
		return detailID == nil || *detailID == id
	}

	switch serviceType {
	case contract.ServiceTypeTrademark:
		if detailID == nil {
			return nil, errDetailRequired
		}
		for i := range details.Trademarks {
			t := &details.Trademarks[i]
			if t.ID == *detailID {
				if kind == KindTrademarkImage {
					return &slot{detailID: t.ID, key: &t.ImageKey}, nil
				}
				return &slot{detailID: t.ID, key: &t.CertificateKey}, nil
			}
		}
	case contract.ServiceTypeCopyright:
		if detailID == nil {
			return nil, errDetailRequired
		}
		for i := range details.Copyrights {
			c := &details.Copyrights[i]
			if c.ID == *detailID {
				return &slot{detailID: c.ID, key: &c.CertificateKey}, nil
			}
		}
	case contract.ServiceTypeBusinessRegistration:
		if b := details.BusinessRegistration; b != nil && matches(b.ID) {
			return &slot{detailID: b.ID, key: &b.CertificateKey}, nil
		}
	case contract.ServiceTypeInvestment:
		if v := details.Investment; v != nil && matches(v.ID) {
			return &slot{detailID: v.ID, key: &v.CertificateKey}, nil
		}
	case contract.ServiceTypeOther:
		if o := details.Other; o != nil && matches(o.ID) {
			return &slot{detailID: o.ID, key: &o.CertificateKey}, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Service detail not found")
}

func keyPrefix(contractID uuid.UUID) string {
	return "certificates/" + contractID.String() + "/"
}

// storageKey builds certificates/{contract}/{detail}/{kind}-{random}{ext}
func storageKey(contractID, detailID uuid.UUID, kind Kind, ext string) string {
	return fmt.Sprintf("%s%s/%s-%s%s", keyPrefix(contractID), detailID, kind, uuid.NewString(), ext)
}
