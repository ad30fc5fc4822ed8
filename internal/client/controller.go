package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"audio-table/internal/app/model"
)

// SortKey selects the column the table is sorted by.
type SortKey string

const (
	SortByPathname   SortKey = "pathname"
	SortBySize       SortKey = "size"
	SortByUploadedAt SortKey = "uploadedAt"
)

// UploadState tracks one in-flight upload for display.
type UploadState struct {
	IsUploading bool
	Progress    int
	Err         error
}

// Controller holds the client-local table state: one record per audio object
// with its optimistic transcription status, plus sort, filter and selection.
// Nothing here is persisted; Refresh re-derives everything from the server.
type Controller struct {
	client *Client

	mu       sync.Mutex
	records  []model.AudioRecord
	selected map[string]bool
	upload   UploadState

	sortKey      SortKey
	sortDesc     bool
	filter       string
	statusFilter *model.StatusKind
}

// NewController creates a controller over an API client.
func NewController(apiClient *Client) *Controller {
	return &Controller{
		client:   apiClient,
		selected: make(map[string]bool),
	}
}

// Refresh replaces all local state with the server's view. Optimistic
// statuses from uploads and failed transcriptions are discarded.
func (t *Controller) Refresh(ctx context.Context) error {
	blobs, err := t.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch blobs: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = t.records[:0]
	for _, blob := range blobs {
		t.records = append(t.records, blob.ToRecord())
	}
	t.selected = make(map[string]bool)
	return nil
}

// Upload validates a local file, uploads it through a minted authorization,
// appends the record as pending and requests transcription. The record ends
// up completed or errored; validation failures reject before any network
// call.
func (t *Controller) Upload(ctx context.Context, filePath, contentType string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", t.failUpload(fmt.Errorf("cannot read file: %w", err))
	}

	if err := ValidateAudioFile(contentType, info.Size()); err != nil {
		return "", t.failUpload(err)
	}

	t.setUploadState(UploadState{IsUploading: true})

	pathname := filepath.Base(filePath)
	authorization, err := t.client.RequestUpload(ctx, pathname, contentType)
	if err != nil {
		return "", t.failUpload(fmt.Errorf("failed to authorize upload: %w", err))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", t.failUpload(fmt.Errorf("cannot open file: %w", err))
	}
	defer file.Close()

	reader := &progressReader{
		reader: file,
		total:  info.Size(),
		report: func(percent int) { t.setUploadProgress(percent) },
	}
	if err := t.client.PutFile(ctx, authorization.UploadURL, contentType, reader, info.Size()); err != nil {
		return "", t.failUpload(err)
	}

	record := model.AudioRecord{
		Pathname:      authorization.Pathname,
		URL:           authorization.URL,
		DownloadURL:   authorization.DownloadURL,
		Size:          info.Size(),
		UploadedAt:    info.ModTime(),
		Transcription: model.Pending(),
	}
	t.appendRecord(record)

	t.setUploadState(UploadState{Progress: 100})

	// Transcription starts immediately after a successful upload.
	t.RequestTranscription(ctx, authorization.URL, authorization.Pathname)

	return authorization.Pathname, nil
}

// RequestTranscription asks the server to transcribe one record and applies
// the outcome: pending -> completed with text, or pending -> error.
func (t *Controller) RequestTranscription(ctx context.Context, blobURL, pathname string) {
	resp, err := t.client.Transcribe(ctx, blobURL, pathname)

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.records {
		if t.records[i].Pathname != pathname {
			continue
		}
		if err != nil || !resp.Success {
			t.records[i].Transcription = model.Errored()
		} else {
			t.records[i].Transcription = model.Completed(resp.Transcription)
		}
		return
	}
}

// Delete removes the record behind a store URL, locally and remotely.
func (t *Controller) Delete(ctx context.Context, url string) error {
	if err := t.client.DeleteByURL(ctx, url); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = lo.Filter(t.records, func(record model.AudioRecord, _ int) bool {
		if record.URL == url {
			delete(t.selected, record.Pathname)
			return false
		}
		return true
	})
	return nil
}

// SetSort selects the sort column and direction.
func (t *Controller) SetSort(key SortKey, desc bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sortKey = key
	t.sortDesc = desc
}

// SetFilter sets a case-insensitive substring filter on pathnames.
func (t *Controller) SetFilter(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = strings.ToLower(query)
}

// SetStatusFilter restricts rows to one transcription status. Pass nil to
// clear.
func (t *Controller) SetStatusFilter(kind *model.StatusKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusFilter = kind
}

// Select marks a row selected or not.
func (t *Controller) Select(pathname string, selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if selected {
		t.selected[pathname] = true
	} else {
		delete(t.selected, pathname)
	}
}

// Selected returns the pathnames of selected rows.
func (t *Controller) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	pathnames := lo.Keys(t.selected)
	sort.Strings(pathnames)
	return pathnames
}

// UploadStatus returns the current upload progress state.
func (t *Controller) UploadStatus() UploadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.upload
}

// Rows returns the filtered, sorted view of the table.
func (t *Controller) Rows() []model.AudioRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := lo.Filter(t.records, func(record model.AudioRecord, _ int) bool {
		if t.filter != "" && !strings.Contains(strings.ToLower(record.Pathname), t.filter) {
			return false
		}
		if t.statusFilter != nil && record.Transcription.Kind() != *t.statusFilter {
			return false
		}
		return true
	})

	if t.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			var less bool
			switch t.sortKey {
			case SortBySize:
				less = rows[i].Size < rows[j].Size
			case SortByUploadedAt:
				less = rows[i].UploadedAt.Before(rows[j].UploadedAt)
			default:
				less = rows[i].Pathname < rows[j].Pathname
			}
			if t.sortDesc {
				return !less
			}
			return less
		})
	}

	return rows
}

// Record looks up one row by pathname.
func (t *Controller) Record(pathname string) (model.AudioRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, record := range t.records {
		if record.Pathname == pathname {
			return record, true
		}
	}
	return model.AudioRecord{}, false
}

func (t *Controller) appendRecord(record model.AudioRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A re-upload of the same pathname restarts its lifecycle.
	for i := range t.records {
		if t.records[i].Pathname == record.Pathname {
			t.records[i] = record
			return
		}
	}
	t.records = append(t.records, record)
}

func (t *Controller) failUpload(err error) error {
	t.setUploadState(UploadState{Err: err})
	return err
}

func (t *Controller) setUploadState(state UploadState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upload = state
}

func (t *Controller) setUploadProgress(percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upload.Progress = percent
}

// progressReader reports upload progress as a percentage of total bytes read.
type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	report func(percent int)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.total > 0 && r.report != nil {
		r.report(int(r.read * 100 / r.total))
	}
	return n, err
}

// FormatBytes renders a byte count for display.
func FormatBytes(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
