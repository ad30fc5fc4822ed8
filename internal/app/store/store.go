// Package store wraps the external blob store behind a key-addressed
// interface: put, list, get, delete and presigned-upload minting.
package store

import (
	"context"
	"errors"
	"io"
	"net/url"
	"time"
)

// ErrNotFound is returned by Get when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Pathname    string    `json:"pathname"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// BlobStore is the object store adapter. Remove is idempotent: deleting an
// absent key is not an error.
type BlobStore interface {
	Put(ctx context.Context, pathname, contentType string, body io.Reader, size int64) (ObjectInfo, error)
	List(ctx context.Context) ([]ObjectInfo, error)
	Get(ctx context.Context, pathname string) (io.ReadCloser, error)
	Remove(ctx context.Context, pathname string) error
	PresignPut(ctx context.Context, pathname string, expiry time.Duration) (*url.URL, error)
	URL(pathname string) string
	KeyFromURL(raw string) (string, error)
}

// allowedContentTypes is the audio MIME allow-list enforced when minting
// upload authorizations. The client-side gate checks the same set, but this
// boundary is the one that counts.
var allowedContentTypes = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/mp3":   {},
	"audio/wav":   {},
	"audio/wave":  {},
	"audio/x-wav": {},
	"audio/aac":   {},
	"audio/ogg":   {},
	"audio/flac":  {},
	"audio/webm":  {},
	"audio/x-m4a": {},
}

// IsAllowedContentType reports whether a declared MIME type may be uploaded.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[contentType]
	return ok
}
