package model

import "time"

// SidecarSuffix is appended to an audio pathname to form the key of the
// store object holding its transcription result.
const SidecarSuffix = "_transcription.json"

// Sidecar is the JSON body of a transcription sidecar object.
type Sidecar struct {
	Text string `json:"text"`
}

// SidecarKey returns the store key of the sidecar for an audio pathname.
func SidecarKey(pathname string) string {
	return pathname + SidecarSuffix
}

// StatusKind identifies a transcription state.
type StatusKind int

const (
	StatusNotTranscribed StatusKind = iota
	StatusPending
	StatusCompleted
	StatusError
)

// String returns the wire representation of the status. NotTranscribed has
// no wire form: the status field is simply absent.
func (k StatusKind) String() string {
	switch k {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// TranscriptionState is the per-record transcription status. Text is carried
// only by the Completed variant, which keeps "transcription is set iff status
// is completed" true by construction.
type TranscriptionState struct {
	kind StatusKind
	text string
}

// NotTranscribed means no transcription was ever attempted (or none is known).
func NotTranscribed() TranscriptionState {
	return TranscriptionState{kind: StatusNotTranscribed}
}

// Pending is client-local only: a transcribe call is in flight. It is never
// persisted to the store.
func Pending() TranscriptionState {
	return TranscriptionState{kind: StatusPending}
}

// Completed carries the recognized text.
func Completed(text string) TranscriptionState {
	return TranscriptionState{kind: StatusCompleted, text: text}
}

// Errored means the last transcribe call failed.
func Errored() TranscriptionState {
	return TranscriptionState{kind: StatusError}
}

// Kind returns the status variant.
func (s TranscriptionState) Kind() StatusKind {
	return s.kind
}

// Text returns the transcription text and whether it is present. The text is
// present iff the state is Completed.
func (s TranscriptionState) Text() (string, bool) {
	return s.text, s.kind == StatusCompleted
}

// AudioRecord is one audio object joined with its transcription state.
type AudioRecord struct {
	Pathname      string
	URL           string
	DownloadURL   string
	Size          int64
	UploadedAt    time.Time
	Transcription TranscriptionState
}
