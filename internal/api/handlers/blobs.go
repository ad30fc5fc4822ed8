package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audio-table/internal/api/dto"
	"audio-table/internal/api/errors"
	"audio-table/internal/api/middleware"
	"audio-table/internal/app/catalog"
)

// BlobsHandler serves the audio record listing.
type BlobsHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewBlobsHandler creates a new blobs handler.
func NewBlobsHandler(catalogService *catalog.Service, logger *zap.Logger) *BlobsHandler {
	return &BlobsHandler{catalog: catalogService, logger: logger}
}

// List handles GET /api/blobs.
func (h *BlobsHandler) List(c *gin.Context) {
	records, err := h.catalog.ListAudioWithTranscriptions(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list blobs",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		middleware.HandleError(c, errors.NewInternalError("Error fetching blobs"))
		return
	}

	blobs := make([]dto.AudioBlob, 0, len(records))
	for _, record := range records {
		blobs = append(blobs, dto.FromRecord(record))
	}

	c.JSON(http.StatusOK, dto.ListBlobsResponse{Blobs: blobs})
}
