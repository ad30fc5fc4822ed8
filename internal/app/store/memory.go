package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory BlobStore used in tests and local development.
// Its Handler can be mounted on an httptest server so presigned uploads and
// URL fetches work end to end.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
	uploadedAt  time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		baseURL: "http://memory.store.invalid",
		objects: make(map[string]memoryObject),
	}
}

// SetBaseURL changes the host objects resolve under, typically an httptest
// server URL wrapping Handler.
func (s *MemoryStore) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = strings.TrimSuffix(baseURL, "/")
}

func (s *MemoryStore) Put(ctx context.Context, pathname, contentType string, body io.Reader, size int64) (ObjectInfo, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("failed to read object body: %w", err)
	}

	s.mu.Lock()
	s.objects[pathname] = memoryObject{
		data:        data,
		contentType: contentType,
		uploadedAt:  time.Now(),
	}
	s.mu.Unlock()

	objectURL := s.URL(pathname)
	return ObjectInfo{
		Pathname:    pathname,
		URL:         objectURL,
		DownloadURL: objectURL,
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
	}, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]ObjectInfo, 0, len(s.objects))
	for pathname, object := range s.objects {
		objectURL := s.URL(pathname)
		objects = append(objects, ObjectInfo{
			Pathname:    pathname,
			URL:         objectURL,
			DownloadURL: objectURL,
			Size:        int64(len(object.data)),
			UploadedAt:  object.uploadedAt,
		})
	}
	return objects, nil
}

func (s *MemoryStore) Get(ctx context.Context, pathname string) (io.ReadCloser, error) {
	s.mu.RLock()
	object, ok := s.objects[pathname]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(object.data)), nil
}

func (s *MemoryStore) Remove(ctx context.Context, pathname string) error {
	s.mu.Lock()
	delete(s.objects, pathname)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PresignPut(ctx context.Context, pathname string, expiry time.Duration) (*url.URL, error) {
	raw := fmt.Sprintf("%s?X-Expires=%d", s.URL(pathname), int(expiry.Seconds()))
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build presigned URL: %w", err)
	}
	return parsed, nil
}

func (s *MemoryStore) URL(pathname string) string {
	s.mu.RLock()
	base := s.baseURL
	s.mu.RUnlock()
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, pathname)
}

func (s *MemoryStore) KeyFromURL(raw string) (string, error) {
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

// Handler serves GET and PUT for stored objects, mirroring the store's URL
// layout (/bucket/key). PUT honors presigned-style URLs by ignoring query
// parameters.
func (s *MemoryStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := s.KeyFromURL(r.URL.String())
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			body, err := s.Get(r.Context(), key)
			if err != nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			defer body.Close()

			s.mu.RLock()
			contentType := s.objects[key].contentType
			s.mu.RUnlock()
			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			io.Copy(w, body)

		case http.MethodPut:
			if _, err := s.Put(r.Context(), key, r.Header.Get("Content-Type"), r.Body, r.ContentLength); err != nil {
				http.Error(w, "upload failed", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
