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

// BookmarkPost bookmarks a post for the current user
// POST /api/v1/posts/:id/bookmark
func (h *Handlers) BookmarkPost(c *gin.Context) {
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

	// Idempotent: bookmarking twice is fine
	var existing models.Bookmark
	err := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":    "Post already bookmarked",
			"bookmarked": true,
		})
		return
	}

	bookmark := models.Bookmark{
		UserID:   userID,
		UploadID: postID,
	}

	if err := database.DB.Create(&bookmark).Error; err != nil {
		util.RespondInternalError(c, "Failed to bookmark post")
		return
	}

	if err := database.DB.Model(&upload).UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment bookmark count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Post bookmarked",
		"bookmarked":    true,
		"bookmarked_at": bookmark.CreatedAt,
	})
}

// UnbookmarkPost removes a bookmark for the current user
// DELETE /api/v1/posts/:id/bookmark
func (h *Handlers) UnbookmarkPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	result := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).Delete(&models.Bookmark{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to remove bookmark")
		return
	}

	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "Bookmark")
		return
	}

	if err := database.DB.Model(&models.Upload{}).Where("id = ?", postID).
		UpdateColumn("bookmark_count", gorm.Expr("CASE WHEN bookmark_count > 0 THEN bookmark_count - 1 ELSE 0 END")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement bookmark count for post "+postID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Bookmark removed",
		"bookmarked": false,
	})
}

// GetBookmarks returns the current user's bookmarked posts
// GET /api/v1/users/me/bookmarks
func (h *Handlers) GetBookmarks(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 50 {
		limit = 50
	}

	var bookmarks []models.Bookmark
	err := database.DB.
		Preload("Upload").
		Preload("Upload.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookmarks).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to get bookmarks")
		return
	}

	var totalCount int64
	if err := database.DB.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		logger.WarnWithFields("Failed to count bookmarks for user "+userID, err)
		totalCount = int64(len(bookmarks))
	}

	posts := make([]gin.H, len(bookmarks))
	for i, b := range bookmarks {
		posts[i] = gin.H{
			"post":          b.Upload,
			"bookmarked_at": b.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks":   posts,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(posts) < int(totalCount),
	})
}

// IsPostBookmarked checks if the current user has bookmarked a post
// GET /api/v1/posts/:id/bookmarked
func (h *Handlers) IsPostBookmarked(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var bookmark models.Bookmark
	err := database.DB.Where("user_id = ? AND upload_id = ?", userID, postID).First(&bookmark).Error

	c.JSON(http.StatusOK, gin.H{
		"bookmarked":    err == nil,
		"bookmarked_at": bookmark.CreatedAt,
	})
}
