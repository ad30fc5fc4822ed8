package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"audio-table/internal/config"
)

// MinioStore implements BlobStore using MinIO.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinioStore creates a MinIO-backed store from injected configuration and
// ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioStore{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return s, nil
}

// Put uploads an object and returns its descriptor.
func (s *MinioStore) Put(ctx context.Context, pathname, contentType string, body io.Reader, size int64) (ObjectInfo, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, pathname, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to upload object: %w", err)
	}

	objectURL := s.URL(pathname)
	return ObjectInfo{
		Pathname:    pathname,
		URL:         objectURL,
		DownloadURL: objectURL,
		Size:        size,
		UploadedAt:  time.Now(),
	}, nil
}

// List enumerates every object in the bucket. ListObjects streams all pages,
// so no cursor chasing is needed here.
func (s *MinioStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		objectURL := s.URL(object.Key)
		objects = append(objects, ObjectInfo{
			Pathname:    object.Key,
			URL:         objectURL,
			DownloadURL: objectURL,
			Size:        object.Size,
			UploadedAt:  object.LastModified,
		})
	}

	return objects, nil
}

// Get returns the object body, or ErrNotFound if no object exists at the key.
func (s *MinioStore) Get(ctx context.Context, pathname string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, pathname, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy: a missing key only surfaces on the first read.
	if _, err := object.Stat(); err != nil {
		object.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return object, nil
}

// Remove deletes an object. S3 semantics make deleting an absent key a no-op,
// which is exactly the idempotency the delete endpoints rely on.
func (s *MinioStore) Remove(ctx context.Context, pathname string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, pathname, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PresignPut mints a short-lived URL authorizing a direct client upload.
func (s *MinioStore) PresignPut(ctx context.Context, pathname string, expiry time.Duration) (*url.URL, error) {
	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, pathname, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presigned, nil
}

// URL returns the public URL for a key.
func (s *MinioStore) URL(pathname string) string {
	protocol := "http"
	if s.useSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.endpoint, s.bucket, pathname)
}

// KeyFromURL maps a store URL back to its object key.
func (s *MinioStore) KeyFromURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid store URL: %w", err)
	}

	prefix := "/" + s.bucket + "/"
	if !strings.HasPrefix(parsed.Path, prefix) {
		return "", fmt.Errorf("URL %q is not inside bucket %q", raw, s.bucket)
	}

	key := strings.TrimPrefix(parsed.Path, prefix)
	if key == "" {
		return "", fmt.Errorf("URL %q has no object key", raw)
	}
	return key, nil
}
