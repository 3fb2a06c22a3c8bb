package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/metrics"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/util"
	"github.com/sharespace-media/backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxChatMessageLength = 4000

// StartConversation finds or creates the conversation with another user
// POST /api/v1/conversations
func (h *Handlers) StartConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "user_id is required")
		return
	}

	if req.UserID == userID {
		util.RespondBadRequest(c, "Cannot start a conversation with yourself")
		return
	}

	var peer models.User
	if err := database.DB.First(&peer, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "User")
			return
		}
		util.RespondInternalError(c, "Failed to find user")
		return
	}

	a, b := models.ConversationPair(userID, req.UserID)

	var conv models.Conversation
	err := database.DB.Preload("UserA").Preload("UserB").
		Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conv).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"conversation": conv})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "Failed to load conversation")
		return
	}

	conv = models.Conversation{UserAID: a, UserBID: b}
	if err := database.DB.Create(&conv).Error; err != nil {
		logger.Error("create conversation failed", logger.WithUserID(userID), zap.Error(err))
		util.RespondInternalError(c, "Failed to create conversation")
		return
	}
	database.DB.Preload("UserA").Preload("UserB").First(&conv, "id = ?", conv.ID)

	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

// ListConversations returns the caller's conversations, most recent first
// GET /api/v1/conversations
func (h *Handlers) ListConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 50 {
		limit = 50
	}

	var conversations []models.Conversation
	err := database.DB.
		Preload("UserA").
		Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load conversations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"limit":         limit,
		"offset":        offset,
	})
}

// SendMessage posts a message into a conversation the caller belongs to.
// The recipient gets the message over their WebSocket connections if online.
// POST /api/v1/conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "text is required")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		util.RespondValidationError(c, "text", "message cannot be empty")
		return
	}
	if len(text) > maxChatMessageLength {
		util.RespondValidationError(c, "text", "message is too long")
		return
	}

	var conv models.Conversation
	if err := database.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "Conversation")
			return
		}
		util.RespondInternalError(c, "Failed to load conversation")
		return
	}

	if !conv.Includes(user.ID) {
		util.RespondForbidden(c, "You are not part of this conversation")
		return
	}

	message := models.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       user.ID,
		Text:           text,
	}

	if err := database.DB.Create(&message).Error; err != nil {
		logger.Error("send message failed",
			logger.WithUserID(user.ID),
			zap.String("conversation_id", conv.ID),
			zap.Error(err))
		util.RespondInternalError(c, "Failed to send message")
		return
	}

	now := time.Now().UTC()
	if err := database.DB.Model(&conv).UpdateColumn("last_message_at", now).Error; err != nil {
		logger.WarnWithFields("Failed to update conversation timestamp "+conv.ID, err)
	}

	metrics.Get().ChatMessagesSent.Inc()

	if h.wsHandler != nil {
		h.wsHandler.NotifyChatMessage(conv.Peer(user.ID), &websocket.ChatMessagePayload{
			MessageID:      message.ID,
			ConversationID: conv.ID,
			SenderID:       user.ID,
			SenderName:     user.Username,
			Text:           text,
			CreatedAt:      message.CreatedAt.UnixMilli(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// GetMessages returns messages in a conversation, newest first
// GET /api/v1/conversations/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")

	var conv models.Conversation
	if err := database.DB.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "Conversation")
			return
		}
		util.RespondInternalError(c, "Failed to load conversation")
		return
	}

	if !conv.Includes(userID) {
		util.RespondForbidden(c, "You are not part of this conversation")
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 100 {
		limit = 100
	}

	var messages []models.ChatMessage
	err := database.DB.
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
	})
}
