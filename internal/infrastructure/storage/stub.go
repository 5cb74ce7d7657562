package storage

import (
	"context"
	"time"

	"github.com/ipshield/backend/internal/application/certificate"
	"github.com/ipshield/backend/internal/domain/shared"
)

// ErrStorageDisabled is returned by DisabledObjectStorage for every file operation
var ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Certificate storage is not configured")

// DisabledObjectStorage stands in when storage.enabled is false.
// Presign and existence checks fail with ErrStorageDisabled; deletes are no-ops
// so contract updates that drop file references still succeed.
type DisabledObjectStorage struct{}

var _ certificate.ObjectStorage = DisabledObjectStorage{}

// NewDisabledObjectStorage creates a DisabledObjectStorage
func NewDisabledObjectStorage() DisabledObjectStorage {
	return DisabledObjectStorage{}
}

func (DisabledObjectStorage) GenerateUploadURL(context.Context, string, string, int64, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

func (DisabledObjectStorage) GenerateDownloadURL(context.Context, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

func (DisabledObjectStorage) DeleteObject(context.Context, string) error {
	return nil
}

func (DisabledObjectStorage) ObjectExists(context.Context, string) (bool, error) {
	return false, ErrStorageDisabled
}
