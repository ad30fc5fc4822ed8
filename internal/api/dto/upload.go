package dto

import "time"

// UploadRequest asks for an upload authorization for one audio object.
type UploadRequest struct {
	Pathname    string `json:"pathname" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadAuthorizationResponse carries a short-lived presigned PUT URL the
// client writes the audio bytes to, plus the object's resolved locations.
type UploadAuthorizationResponse struct {
	Pathname    string    `json:"pathname"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	UploadURL   string    `json:"uploadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
