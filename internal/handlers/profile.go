package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/util"
	"gorm.io/gorm"
)

// GetUserProfile returns a user's public profile by username
// GET /api/v1/users/:username
func (h *Handlers) GetUserProfile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	err := database.DB.Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "User")
			return
		}
		util.RespondInternalError(c, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"bio":          user.Bio,
			"avatar_url":   user.AvatarURL,
			"upload_count": user.UploadCount,
			"created_at":   user.CreatedAt,
		},
	})
}

// UpdateProfileRequest is the body for editing the caller's profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=50"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// UpdateProfile edits the authenticated user's profile
// PATCH /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	oldAvatar := user.AvatarURL

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "Failed to update profile")
		return
	}

	// Drop the previous avatar blob once it is no longer referenced
	if req.AvatarURL != nil && oldAvatar != "" && oldAvatar != *req.AvatarURL {
		if relPath := blobPathFromURL(oldAvatar); relPath != "" {
			if err := h.blobs.Delete(c.Request.Context(), relPath); err != nil {
				logger.WarnWithFields("Failed to delete old avatar "+relPath, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
