package certificate

import (
	"time"

	"github.com/google/uuid"
)

// UploadRequest asks for a presigned upload URL
type UploadRequest struct {
	Kind        string     `json:"kind" binding:"required,oneof=certificate trademark_image"`
	DetailID    *uuid.UUID `json:"detail_id"`
	FileName    string     `json:"file_name" binding:"required,max=255"`
	ContentType string     `json:"content_type" binding:"required"`
	FileSize    int64      `json:"file_size" binding:"required,gt=0"`
}

// UploadResponse carries the presigned URL and the key to confirm after the upload
type UploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	DetailID   uuid.UUID `json:"detail_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmRequest attaches an uploaded object to a service detail
type ConfirmRequest struct {
	Kind       string     `json:"kind" binding:"required,oneof=certificate trademark_image"`
	DetailID   *uuid.UUID `json:"detail_id"`
	StorageKey string     `json:"storage_key" binding:"required"`
}

// FileResponse describes a stored file with a short-lived download URL
type FileResponse struct {
	DetailID    uuid.UUID `json:"detail_id"`
	Kind        string    `json:"kind"`
	StorageKey  string    `json:"storage_key"`
	FileName    string    `json:"file_name"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
