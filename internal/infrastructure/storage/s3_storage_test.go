package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ipshield/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func localConfig(bucket string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:          bucket,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
		PresignExpiry:   15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := localConfig("")
		_, err := NewS3ObjectStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("access key without secret returns error", func(t *testing.T) {
		cfg := localConfig("test-bucket")
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"))
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, "test-bucket", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiry)
	})

	t.Run("endpoint without scheme gets https", func(t *testing.T) {
		cfg := localConfig("test-bucket")
		cfg.Endpoint = "storage.internal:9000"
		storage, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)

		url, _, err := storage.GenerateDownloadURL(ctx, "a.pdf", time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://storage.internal:9000"))
	})

	t.Run("no endpoint uses the AWS regional endpoint", func(t *testing.T) {
		cfg := localConfig("test-bucket")
		cfg.Endpoint = ""
		cfg.UsePathStyle = false
		cfg.Region = "ap-southeast-1"
		storage, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)

		url, _, err := storage.GenerateDownloadURL(ctx, "a.pdf", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "amazonaws.com")
		assert.Contains(t, url, "test-bucket")
	})

	t.Run("default presign expiration is 15 minutes", func(t *testing.T) {
		cfg := localConfig("test-bucket")
		cfg.PresignExpiry = 0
		storage, err := NewS3ObjectStorage(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, storage.presignExpiry)
	})
}

func TestS3ObjectStorageOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("WithLogger sets custom logger", func(t *testing.T) {
		logger := zaptest.NewLogger(t)
		storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"), WithLogger(logger))
		require.NoError(t, err)
		assert.Same(t, logger, storage.logger)
	})

	t.Run("WithPresignExpiration sets custom duration", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, storage.presignExpiry)
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	ctx := context.Background()
	storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"))
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		url, _, err := storage.GenerateUploadURL(ctx, "", "application/pdf", 1024, 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("generates valid presigned URL", func(t *testing.T) {
		key := "certificates/c1/d1/certificate-x.pdf"
		url, expiresAt, err := storage.GenerateUploadURL(ctx, key, "application/pdf", 1024, 15*time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000")
		assert.Contains(t, url, "test-bucket")
		assert.Contains(t, url, "certificate-x.pdf")
		assert.Contains(t, url, "X-Amz-Signature")
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})

	t.Run("uses default expiration when not provided", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateUploadURL(ctx, "k.pdf", "application/pdf", 1024, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, expiresAt.After(time.Now().Add(14*time.Minute)))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	ctx := context.Background()
	storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"))
	require.NoError(t, err)

	t.Run("empty storage key returns error", func(t *testing.T) {
		url, _, err := storage.GenerateDownloadURL(ctx, "", 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("generates valid presigned URL", func(t *testing.T) {
		url, expiresAt, err := storage.GenerateDownloadURL(ctx, "test/key.pdf", time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000")
		assert.Contains(t, url, "test-bucket")
		assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))
	})
}

func TestS3ObjectStorage_KeyValidation(t *testing.T) {
	ctx := context.Background()
	storage, err := NewS3ObjectStorage(ctx, localConfig("test-bucket"))
	require.NoError(t, err)

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, storage.DeleteObject(ctx, ""), ErrEmptyKey)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := storage.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
		assert.False(t, exists)
	})

	t.Run("upload", func(t *testing.T) {
		assert.ErrorIs(t, storage.Upload(ctx, "", []byte("test"), "text/plain"), ErrEmptyKey)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    string
		wantErr bool
	}{
		"empty keeps AWS default": {in: "", want: ""},
		"bare host gets https":    {in: "minio.local:9000", want: "https://minio.local:9000"},
		"http kept":               {in: "http://localhost:9000", want: "http://localhost:9000"},
		"scheme without host":     {in: "http://", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3ObjectStorage_TTL(t *testing.T) {
	s := &S3ObjectStorage{presignExpiry: 10 * time.Minute}
	assert.Equal(t, 10*time.Minute, s.ttl(0))
	assert.Equal(t, 10*time.Minute, s.ttl(-time.Second))
	assert.Equal(t, time.Hour, s.ttl(time.Hour))
}

// Integration tests need an S3-compatible server; set STORAGE_INTEGRATION_ENDPOINT to run them.
func newIntegrationStorage(t *testing.T, bucket string) *S3ObjectStorage {
	t.Helper()
	endpoint := os.Getenv("STORAGE_INTEGRATION_ENDPOINT")
	if endpoint == "" {
		t.Skip("set STORAGE_INTEGRATION_ENDPOINT to run storage integration tests")
	}

	cfg := &config.StorageConfig{
		Bucket:          bucket,
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Endpoint:        endpoint,
		Region:          "us-east-1",
		UsePathStyle:    true,
	}
	storage, err := NewS3ObjectStorage(context.Background(), cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBucket(context.Background()))
	return storage
}

func TestIntegration_UploadExistsDelete(t *testing.T) {
	storage := newIntegrationStorage(t, "ipshield-integration")
	ctx := context.Background()
	key := "certificates/integration/file.pdf"

	require.NoError(t, storage.Upload(ctx, key, []byte("%PDF-1.4"), "application/pdf"))

	exists, err := storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, storage.DeleteObject(ctx, key))

	exists, err = storage.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIntegration_EnsureBucketIsIdempotent(t *testing.T) {
	storage := newIntegrationStorage(t, "ipshield-ensure")
	require.NoError(t, storage.EnsureBucket(context.Background()))
}
