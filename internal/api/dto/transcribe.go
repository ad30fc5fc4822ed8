package dto

// TranscribeRequest asks for a one-shot transcription of an uploaded object.
type TranscribeRequest struct {
	BlobURL  string `json:"blobUrl" binding:"required"`
	Pathname string `json:"pathname" binding:"required"`
}

// TranscribeResponse is the body of a successful transcription call.
type TranscribeResponse struct {
	Success          bool   `json:"success"`
	Transcription    string `json:"transcription"`
	TranscriptionURL string `json:"transcriptionUrl"`
}
