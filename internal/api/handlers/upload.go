package handlers

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audio-table/internal/api/dto"
	"audio-table/internal/api/errors"
	"audio-table/internal/api/middleware"
	"audio-table/internal/app/store"
)

// UploadHandler mints short-lived upload authorizations for direct client
// writes to the store.
type UploadHandler struct {
	store         store.BlobStore
	presignExpiry time.Duration
	logger        *zap.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(blobStore store.BlobStore, presignExpiry time.Duration, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{store: blobStore, presignExpiry: presignExpiry, logger: logger}
}

// Authorize handles POST /api/upload. The declared content type must be in
// the audio allow-list; this check is the real enforcement point behind the
// client's advisory validation.
func (h *UploadHandler) Authorize(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("pathname and contentType are required"))
		return
	}

	if !store.IsAllowedContentType(req.ContentType) {
		middleware.HandleError(c, errors.NewBadRequestErrorWithDetails("Unsupported content type", map[string]string{
			"contentType": "must be an audio MIME type",
		}))
		return
	}

	pathname, ok := cleanPathname(req.Pathname)
	if !ok {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid pathname"))
		return
	}

	uploadURL, err := h.store.PresignPut(c.Request.Context(), pathname, h.presignExpiry)
	if err != nil {
		h.logger.Error("failed to mint upload authorization",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("pathname", pathname),
			zap.Error(err),
		)
		middleware.HandleError(c, errors.NewInternalError("Error uploading file"))
		return
	}

	objectURL := h.store.URL(pathname)
	c.JSON(http.StatusOK, dto.UploadAuthorizationResponse{
		Pathname:    pathname,
		URL:         objectURL,
		DownloadURL: objectURL,
		UploadURL:   uploadURL.String(),
		ExpiresAt:   time.Now().Add(h.presignExpiry),
	})
}

// cleanPathname normalizes a client-chosen key and rejects traversal.
func cleanPathname(raw string) (string, bool) {
	cleaned := path.Clean("/" + raw)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return cleaned, true
}
