package transcribe

import "context"

// Transcriber converts an audio file on local disk to text.
type Transcriber interface {
	Transcribe(ctx context.Context, inputFilePath string) (string, error)
}
