package dto

// DeleteByURLRequest deletes one object addressed by its store URL.
type DeleteByURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// DeleteByPathnameRequest deletes one object addressed by its key.
type DeleteByPathnameRequest struct {
	Pathname string `json:"pathname" binding:"required"`
}

// DeleteResponse reports a delete outcome.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
