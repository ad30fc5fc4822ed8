package dto

import (
	"time"

	"audio-table/internal/app/model"
)

// AudioBlob is the wire form of an audio record. transcription is present iff
// transcriptionStatus is "completed"; both are absent when no transcription is
// known.
type AudioBlob struct {
	Pathname            string    `json:"pathname"`
	URL                 string    `json:"url"`
	DownloadURL         string    `json:"downloadUrl"`
	Size                int64     `json:"size"`
	UploadedAt          time.Time `json:"uploadedAt"`
	Transcription       string    `json:"transcription,omitempty"`
	TranscriptionStatus string    `json:"transcriptionStatus,omitempty"`
}

// ListBlobsResponse is the body of GET /api/blobs.
type ListBlobsResponse struct {
	Blobs []AudioBlob `json:"blobs"`
}

// FromRecord converts a domain record to its wire form.
func FromRecord(record model.AudioRecord) AudioBlob {
	blob := AudioBlob{
		Pathname:            record.Pathname,
		URL:                 record.URL,
		DownloadURL:         record.DownloadURL,
		Size:                record.Size,
		UploadedAt:          record.UploadedAt,
		TranscriptionStatus: record.Transcription.Kind().String(),
	}
	if text, ok := record.Transcription.Text(); ok {
		blob.Transcription = text
	}
	return blob
}

// ToRecord converts a wire blob back to a domain record. Used by the client
// when reconciling list responses into local state.
func (b AudioBlob) ToRecord() model.AudioRecord {
	record := model.AudioRecord{
		Pathname:    b.Pathname,
		URL:         b.URL,
		DownloadURL: b.DownloadURL,
		Size:        b.Size,
		UploadedAt:  b.UploadedAt,
	}

	switch b.TranscriptionStatus {
	case "completed":
		record.Transcription = model.Completed(b.Transcription)
	case "pending":
		record.Transcription = model.Pending()
	case "error":
		record.Transcription = model.Errored()
	default:
		record.Transcription = model.NotTranscribed()
	}
	return record
}
