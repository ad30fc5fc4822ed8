package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audio-table/internal/api/dto"
	"audio-table/internal/api/errors"
	"audio-table/internal/api/middleware"
	"audio-table/internal/app/model"
	"audio-table/internal/app/store"
)

// DeleteHandler removes audio objects and their sidecars.
type DeleteHandler struct {
	store  store.BlobStore
	logger *zap.Logger
}

// NewDeleteHandler creates a new delete handler.
func NewDeleteHandler(blobStore store.BlobStore, logger *zap.Logger) *DeleteHandler {
	return &DeleteHandler{store: blobStore, logger: logger}
}

// DeleteByURL handles POST /api/blobs/delete.
func (h *DeleteHandler) DeleteByURL(c *gin.Context) {
	var req dto.DeleteByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("URL is required"))
		return
	}

	pathname, err := h.store.KeyFromURL(req.URL)
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid blob URL"))
		return
	}

	if err := h.removeWithSidecar(c, pathname); err != nil {
		middleware.HandleError(c, errors.NewInternalError("Failed to delete file"))
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

// DeleteByPathname handles DELETE /api/delete.
func (h *DeleteHandler) DeleteByPathname(c *gin.Context) {
	var req dto.DeleteByPathnameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("No pathname provided"))
		return
	}

	if err := h.removeWithSidecar(c, req.Pathname); err != nil {
		middleware.HandleError(c, errors.NewInternalError("Failed to delete file"))
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResponse{Success: true})
}

// removeWithSidecar deletes the audio object and its sidecar. A failed
// sidecar delete is swallowed: the sidecar usually does not exist.
func (h *DeleteHandler) removeWithSidecar(c *gin.Context, pathname string) error {
	ctx := c.Request.Context()

	if err := h.store.Remove(ctx, pathname); err != nil {
		h.logger.Error("failed to delete blob",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("pathname", pathname),
			zap.Error(err),
		)
		return err
	}

	if err := h.store.Remove(ctx, model.SidecarKey(pathname)); err != nil {
		h.logger.Info("no transcription sidecar deleted",
			zap.String("pathname", pathname),
			zap.Error(err),
		)
	}

	return nil
}
