// Package catalog joins audio objects in the store with their transcription
// sidecars into the records the table displays.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"audio-table/internal/app/model"
	"audio-table/internal/app/store"
)

// audioExtensions is the fixed allow-set of audio file extensions.
var audioExtensions = map[string]struct{}{
	"mp3":  {},
	"m4a":  {},
	"wav":  {},
	"ogg":  {},
	"oga":  {},
	"flac": {},
	"webm": {},
}

// IsAudioFile reports whether a pathname looks like an audio object by its
// extension.
func IsAudioFile(pathname string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(pathname), "."))
	if ext == "" {
		return false
	}
	_, ok := audioExtensions[ext]
	return ok
}

// Service lists audio records with their transcription state.
type Service struct {
	store  store.BlobStore
	logger *zap.Logger
}

// NewService creates a catalog service.
func NewService(blobStore store.BlobStore, logger *zap.Logger) *Service {
	return &Service{store: blobStore, logger: logger}
}

// ListAudioWithTranscriptions enumerates the store, keeps audio objects that
// are not sidecars, and joins each with its sidecar text if one exists. No
// ordering is guaranteed; sorting belongs to the presentation layer.
//
// A failed sidecar fetch degrades that single record to "no transcription
// known" instead of failing the whole listing.
func (s *Service) ListAudioWithTranscriptions(ctx context.Context) ([]model.AudioRecord, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate store: %w", err)
	}

	audioObjects := lo.Filter(objects, func(object store.ObjectInfo, _ int) bool {
		return IsAudioFile(object.Pathname) && !strings.HasSuffix(object.Pathname, model.SidecarSuffix)
	})

	records := make([]model.AudioRecord, 0, len(audioObjects))
	for _, object := range audioObjects {
		records = append(records, model.AudioRecord{
			Pathname:      object.Pathname,
			URL:           object.URL,
			DownloadURL:   object.DownloadURL,
			Size:          object.Size,
			UploadedAt:    object.UploadedAt,
			Transcription: s.lookupTranscription(ctx, object.Pathname),
		})
	}

	return records, nil
}

// lookupTranscription probes the store for a sidecar. Missing sidecars and
// fetch failures both collapse to NotTranscribed; only the latter is logged.
func (s *Service) lookupTranscription(ctx context.Context, pathname string) model.TranscriptionState {
	body, err := s.store.Get(ctx, model.SidecarKey(pathname))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to fetch transcription sidecar",
				zap.String("pathname", pathname),
				zap.Error(err),
			)
		}
		return model.NotTranscribed()
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		s.logger.Warn("failed to read transcription sidecar",
			zap.String("pathname", pathname),
			zap.Error(err),
		)
		return model.NotTranscribed()
	}

	var sidecar model.Sidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		s.logger.Warn("malformed transcription sidecar",
			zap.String("pathname", pathname),
			zap.Error(err),
		)
		return model.NotTranscribed()
	}

	return model.Completed(sidecar.Text)
}
