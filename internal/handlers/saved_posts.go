package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/util"
	"gorm.io/gorm"
)

// SavePost adds a post to the current user's saved list
// POST /api/v1/posts/:id/save
func (h *Handlers) SavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var upload models.Upload
	if err := database.DB.First(&upload, "id = ?", postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "Post")
			return
		}
		util.RespondInternalError(c, "Failed to find post")
		return
	}

	var existing models.SavedPost
	err := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Post already saved",
			"saved":   true,
		})
		return
	}

	savedPost := models.SavedPost{
		UserID:   userID,
		UploadID: postID,
	}

	if err := database.DB.Create(&savedPost).Error; err != nil {
		util.RespondInternalError(c, "Failed to save post")
		return
	}

	if err := database.DB.Model(&upload).UpdateColumn("save_count", gorm.Expr("save_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment save count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Post saved",
		"saved":    true,
		"saved_at": savedPost.CreatedAt,
	})
}

// UnsavePost removes a post from the current user's saved list
// DELETE /api/v1/posts/:id/save
func (h *Handlers) UnsavePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	result := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).Delete(&models.SavedPost{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to unsave post")
		return
	}

	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "Saved post")
		return
	}

	if err := database.DB.Model(&models.Upload{}).Where("id = ?", postID).
		UpdateColumn("save_count", gorm.Expr("CASE WHEN save_count > 0 THEN save_count - 1 ELSE 0 END")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement save count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post unsaved",
		"saved":   false,
	})
}

// GetSavedPosts returns the current user's saved posts
// GET /api/v1/users/me/saved
func (h *Handlers) GetSavedPosts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 50 {
		limit = 50
	}

	var savedPosts []models.SavedPost
	err := database.DB.
		Preload("Upload").
		Preload("Upload.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&savedPosts).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to get saved posts")
		return
	}

	var totalCount int64
	if err := database.DB.Model(&models.SavedPost{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		logger.WarnWithFields("Failed to count saved posts for user "+userID, err)
		totalCount = int64(len(savedPosts))
	}

	posts := make([]gin.H, len(savedPosts))
	for i, sp := range savedPosts {
		posts[i] = gin.H{
			"post":     sp.Upload,
			"saved_at": sp.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"saved":       posts,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(posts) < int(totalCount),
	})
}

// IsPostSaved checks if the current user has saved a post
// GET /api/v1/posts/:id/saved
func (h *Handlers) IsPostSaved(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var savedPost models.SavedPost
	err := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).First(&savedPost).Error

	c.JSON(http.StatusOK, gin.H{
		"saved":    err == nil,
		"saved_at": savedPost.CreatedAt,
	})
}
