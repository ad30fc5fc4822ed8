// Package client implements the table-side consumer of the API: an HTTP
// client for the five endpoints and a local state controller driving the
// record table.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"audio-table/internal/api/dto"
)

// Client calls the audio table API with a session token attached.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the given server and session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
	}
}

// List fetches all audio records.
func (c *Client) List(ctx context.Context) ([]dto.AudioBlob, error) {
	var resp dto.ListBlobsResponse
	if err := c.call(ctx, http.MethodGet, "/api/blobs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Blobs, nil
}

// RequestUpload mints an upload authorization for a new audio object.
func (c *Client) RequestUpload(ctx context.Context, pathname, contentType string) (*dto.UploadAuthorizationResponse, error) {
	req := dto.UploadRequest{Pathname: pathname, ContentType: contentType}
	var resp dto.UploadAuthorizationResponse
	if err := c.call(ctx, http.MethodPost, "/api/upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutFile writes the audio bytes to a presigned upload URL.
func (c *Client) PutFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("invalid upload URL: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return nil
}

// Transcribe requests a one-shot transcription of an uploaded object.
func (c *Client) Transcribe(ctx context.Context, blobURL, pathname string) (*dto.TranscribeResponse, error) {
	req := dto.TranscribeRequest{BlobURL: blobURL, Pathname: pathname}
	var resp dto.TranscribeResponse
	if err := c.call(ctx, http.MethodPost, "/api/transcribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteByURL removes the object behind a store URL.
func (c *Client) DeleteByURL(ctx context.Context, url string) error {
	req := dto.DeleteByURLRequest{URL: url}
	var resp dto.DeleteResponse
	return c.call(ctx, http.MethodPost, "/api/blobs/delete", req, &resp)
}

// DeleteByPathname removes the object at a key along with its sidecar.
func (c *Client) DeleteByPathname(ctx context.Context, pathname string) error {
	req := dto.DeleteByPathnameRequest{Pathname: pathname}
	var resp dto.DeleteResponse
	return c.call(ctx, http.MethodDelete, "/api/delete", req, &resp)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
