package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/sharespace-media/backend/internal/errors"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/metrics"
	"github.com/sharespace-media/backend/internal/storage"
	"github.com/sharespace-media/backend/internal/util"
	"go.uber.org/zap"
)

// UploadFile stores a file in blob storage under the caller's folder.
// Multipart form: "file" is required, "folder" is an optional subfolder.
// POST /api/v1/files
func (h *Handlers) UploadFile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.RespondBadRequest(c, "No file provided")
		return
	}

	if fileHeader.Size > h.maxUploadSize {
		util.RespondWithAPIError(c, apierrors.PayloadTooLarge(
			fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadSize)))
		return
	}

	if err := util.ValidateFilename(fileHeader.Filename); err != nil {
		util.RespondValidationError(c, "file", err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "Failed to read file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadSize+1))
	if err != nil {
		util.RespondInternalError(c, "Failed to read file")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		util.RespondWithAPIError(c, apierrors.PayloadTooLarge(
			fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadSize)))
		return
	}

	relPath := path.Join("uploads", userID)
	if folder := c.PostForm("folder"); folder != "" {
		cleaned := path.Clean("/" + folder)[1:] // no traversal outside the user folder
		if cleaned != "" && cleaned != "." {
			relPath = path.Join(relPath, cleaned)
		}
	}
	relPath = path.Join(relPath, fileHeader.Filename)

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	result, err := h.blobs.Save(c.Request.Context(), data, relPath, mimeType)
	if err != nil {
		logger.Error("file upload failed",
			logger.WithUserID(userID),
			zap.String("path", relPath),
			zap.Error(err))
		util.RespondInternalError(c, "Failed to store file")
		return
	}

	m := metrics.Get()
	m.UploadsStored.WithLabelValues(backendLabel(h.blobs)).Inc()
	m.UploadBytes.Add(float64(result.Size))

	logger.Log.Info("file uploaded",
		logger.WithUserID(userID),
		logger.WithUploadID(result.ID),
		zap.String("filename", result.Filename),
		zap.Int64("size", result.Size))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"file":    result,
	})
}

// DeleteFile removes a previously uploaded file.
// Only paths under the caller's own folder can be deleted.
// DELETE /api/v1/files
func (h *Handlers) DeleteFile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "path is required")
		return
	}

	cleaned := path.Clean("/" + strings.TrimPrefix(req.Path, "/"))[1:]
	ownPrefix := path.Join("uploads", userID) + "/"
	if !strings.HasPrefix(cleaned, ownPrefix) {
		util.RespondForbidden(c, "Cannot delete files outside your folder")
		return
	}

	if err := h.blobs.Delete(c.Request.Context(), cleaned); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			util.RespondNotFound(c, "File")
			return
		}
		logger.Error("file delete failed",
			logger.WithUserID(userID),
			zap.String("path", cleaned),
			zap.Error(err))
		util.RespondInternalError(c, "Failed to delete file")
		return
	}

	metrics.Get().UploadsDeleted.Inc()

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func backendLabel(b storage.BlobStore) string {
	switch b.(type) {
	case *storage.S3Store:
		return "s3"
	case *storage.LocalStore:
		return "local"
	default:
		return "unknown"
	}
}
