package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/sharespace-media/backend/internal/errors"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/metrics"
	"github.com/sharespace-media/backend/internal/sharelink"
	"github.com/sharespace-media/backend/internal/util"
	"go.uber.org/zap"
)

// CreateShareLinkRequest is the body for issuing a one-time share link
type CreateShareLinkRequest struct {
	Payload  string `json:"payload" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

// CreateShareLink issues a single-use link for a file payload.
// The payload is stored until the first retrieval, then destroyed.
// POST /api/v1/secure-links
func (h *Handlers) CreateShareLink(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "payload and file_name are required")
		return
	}

	token, url, err := h.links.Issue(c.Request.Context(), req.Payload, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, sharelink.ErrPayloadTooLarge):
			util.RespondWithAPIError(c, apierrors.PayloadTooLarge("file is too large to share"))
		case errors.Is(err, sharelink.ErrInvalidPayload):
			util.RespondValidationError(c, "payload", "payload must be a base64 data URI")
		default:
			logger.Error("issue share link failed", logger.WithUserID(userID), zap.Error(err))
			util.RespondInternalError(c, "Failed to create share link")
		}
		return
	}

	metrics.Get().ShareLinksIssued.Inc()
	logger.Log.Info("share link issued",
		logger.WithUserID(userID),
		zap.String("link_id", token.ID),
		zap.String("file_name", token.FileName))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     url,
	})
}

// ConsumeShareLink retrieves a one-time link exactly once and destroys it.
// A second request for the same id gets 404, as does an expired or unknown id.
// GET /api/v1/secure-links/:id
func (h *Handlers) ConsumeShareLink(c *gin.Context) {
	id := c.Param("id")

	token, err := h.links.Consume(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sharelink.ErrNotFound) {
			metrics.Get().ShareLinksMissed.Inc()
			util.RespondNotFound(c, "Share link")
			return
		}
		logger.Error("consume share link failed", zap.String("link_id", id), zap.Error(err))
		util.RespondInternalError(c, "Failed to retrieve share link")
		return
	}

	metrics.Get().ShareLinksConsumed.Inc()

	c.JSON(http.StatusOK, gin.H{
		"payload":  token.Payload,
		"fileName": token.FileName,
	})
}
