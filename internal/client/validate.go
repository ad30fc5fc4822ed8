package client

import "fmt"

// MaxUploadSize is the advisory client-side size limit.
const MaxUploadSize = 100 * 1024 * 1024

// allowedUploadTypes mirrors the adapter boundary's audio allow-list. This
// gate is advisory: the upload-authorization endpoint is the enforcement
// point.
var allowedUploadTypes = map[string]struct{}{
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

// ValidateAudioFile rejects non-audio MIME types and oversized files before
// any network call is made. The returned errors are user-visible.
func ValidateAudioFile(contentType string, size int64) error {
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return fmt.Errorf("please upload an audio file (MP3, WAV, AAC, OGG, etc.)")
	}
	if size > MaxUploadSize {
		return fmt.Errorf("file size must be less than 100MB")
	}
	return nil
}
