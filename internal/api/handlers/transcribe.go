package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"audio-table/internal/api/dto"
	"audio-table/internal/api/errors"
	"audio-table/internal/api/middleware"
	"audio-table/internal/app/transcribe"
)

// TranscribeHandler runs the one-shot transcription pipeline.
type TranscribeHandler struct {
	pipeline *transcribe.Pipeline
	logger   *zap.Logger
}

// NewTranscribeHandler creates a new transcribe handler.
func NewTranscribeHandler(pipeline *transcribe.Pipeline, logger *zap.Logger) *TranscribeHandler {
	return &TranscribeHandler{pipeline: pipeline, logger: logger}
}

// Transcribe handles POST /api/transcribe. Each request gets a fresh unique
// handle for the pipeline's scratch file, so concurrent calls cannot collide.
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	var req dto.TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("No blob URL provided"))
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), req.BlobURL, req.Pathname, uuid.NewString())
	if err != nil {
		h.logger.Error("transcription pipeline failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("pathname", req.Pathname),
			zap.Error(err),
		)
		middleware.HandleError(c, errors.NewInternalError("Failed to transcribe audio"))
		return
	}

	c.JSON(http.StatusOK, dto.TranscribeResponse{
		Success:          true,
		Transcription:    result.Text,
		TranscriptionURL: result.SidecarURL,
	})
}
