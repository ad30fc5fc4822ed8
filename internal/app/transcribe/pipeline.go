// Package transcribe runs the single-shot download -> recognize -> sidecar
// pipeline. There is no retry, no queue and no partial-progress persistence:
// an interrupted run leaves the audio object with no sidecar, which is
// indistinguishable from "never attempted".
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"audio-table/internal/app/model"
	"audio-table/internal/app/store"
)

// Result is the outcome of a successful pipeline run.
type Result struct {
	Text       string
	SidecarURL string
}

// Pipeline downloads an audio object, transcribes it and writes the
// transcription sidecar back to the store.
type Pipeline struct {
	store       store.BlobStore
	transcriber Transcriber
	httpClient  *http.Client
	scratchDir  string
	logger      *zap.Logger
}

// NewPipeline creates a transcription pipeline writing scratch files to the
// system temp directory.
func NewPipeline(blobStore store.BlobStore, transcriber Transcriber, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:       blobStore,
		transcriber: transcriber,
		httpClient:  http.DefaultClient,
		scratchDir:  os.TempDir(),
		logger:      logger,
	}
}

// Run executes the pipeline for one audio object. handle must be unique per
// invocation (the caller supplies a request-scoped id) so concurrent runs
// never collide on scratch files. The scratch file is removed on every exit
// path; removal failure is logged, not surfaced.
func (p *Pipeline) Run(ctx context.Context, sourceURL, destPathname, handle string) (*Result, error) {
	scratchPath, err := p.downloadToScratch(ctx, sourceURL, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to download source: %w", err)
	}
	defer p.removeScratch(scratchPath)

	text, err := p.transcriber.Transcribe(ctx, scratchPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	sidecarURL, err := p.storeSidecar(ctx, destPathname, text)
	if err != nil {
		return nil, fmt.Errorf("failed to store sidecar: %w", err)
	}

	return &Result{Text: text, SidecarURL: sidecarURL}, nil
}

// downloadToScratch fetches the source URL into an exclusively-owned scratch
// file named from the unique handle plus the source extension.
func (p *Pipeline) downloadToScratch(ctx context.Context, sourceURL, handle string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	scratchPath := filepath.Join(p.scratchDir, "audio_"+handle+sourceExtension(sourceURL))

	out, err := os.Create(scratchPath)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		p.removeScratch(scratchPath)
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}

	if err := out.Close(); err != nil {
		p.removeScratch(scratchPath)
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}

	return scratchPath, nil
}

func (p *Pipeline) storeSidecar(ctx context.Context, destPathname, text string) (string, error) {
	payload, err := json.Marshal(model.Sidecar{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode sidecar: %w", err)
	}

	info, err := p.store.Put(ctx, model.SidecarKey(destPathname), "application/json",
		bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", err
	}

	return info.URL, nil
}

func (p *Pipeline) removeScratch(scratchPath string) {
	if err := os.Remove(scratchPath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to clean up scratch file",
			zap.String("path", scratchPath),
			zap.Error(err),
		)
	}
}

// sourceExtension extracts the file extension from a URL path, ignoring query
// parameters.
func sourceExtension(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	return path.Ext(parsed.Path)
}
