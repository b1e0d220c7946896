package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dojohub/internal/logging"
)

const (
	maxLogoSize    = 2 << 20
	maxProofSize   = 5 << 20
	maxContentSize = 50 << 20
	presignExpiry  = time.Hour
)

var (
	logoTypes = map[string]string{
		"image/png":     "png",
		"image/jpeg":    "jpg",
		"image/svg+xml": "svg",
	}
	proofTypes = map[string]string{
		"application/pdf": "pdf",
		"image/png":       "png",
		"image/jpeg":      "jpg",
	}
	documentTypes = map[string]string{
		"application/pdf": "pdf",
		"image/png":       "png",
		"image/jpeg":      "jpg",
		"video/mp4":       "mp4",
		"text/plain":      "txt",
	}
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// StorageService stores academy files in a single MinIO bucket.
type StorageService interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectKey string) error
	EnsureBucket(ctx context.Context) error
	Ping(ctx context.Context) error
}

type minioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client, bucket: bucket}, nil
}

func (m *minioStorage) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return nil
}

func (m *minioStorage) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioStorage) Delete(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioStorage) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioStorage) Ping(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

// academyObjectKey builds academies/{id}/{parts...}.
func academyObjectKey(academyID uuid.UUID, parts ...string) string {
	return path.Join(append([]string{"academies", academyID.String()}, parts...)...)
}

// checkUpload validates size and content type and returns the file extension.
func checkUpload(field string, up *Upload, maxSize int64, allowed map[string]string) (string, error) {
	if up == nil || up.Reader == nil {
		return "", invalidField(field, "%s is required", field)
	}
	if up.Size <= 0 {
		return "", invalidField(field, "%s is empty", field)
	}
	if up.Size > maxSize {
		return "", invalidField(field, "%s must be at most %d MiB", field, maxSize>>20)
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	ext, ok := allowed[contentType]
	if !ok {
		return "", invalidField(field, "%s has unsupported content type %q", field, up.ContentType)
	}
	up.ContentType = contentType
	return ext, nil
}

// presign returns a presigned URL for key or nil when key is unset or
// signing fails.
func presign(ctx context.Context, storage StorageService, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	u, err := storage.PresignedURL(ctx, *key, presignExpiry)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("object", *key).Msg("failed to presign object")
		return nil
	}
	return &u
}
