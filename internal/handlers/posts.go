package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePostRequest is the body for creating a post or article
type CreatePostRequest struct {
	Type          string               `json:"type" binding:"required"`
	Title         string               `json:"title" binding:"required,min=1,max=200"`
	Description   string               `json:"description" binding:"max=2000"`
	Link          string               `json:"link" binding:"max=500"`
	Tags          []string             `json:"tags"`
	Files         models.UploadedFiles `json:"files"`
	Content       string               `json:"content"`
	DisplayOption string               `json:"display_option"`
}

// CreatePost creates a new post (image, video, document) or article
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if !models.ValidUploadType(req.Type) {
		util.RespondValidationError(c, "type", "must be one of image, video, document, article")
		return
	}

	if req.Type == models.UploadTypeArticle {
		if strings.TrimSpace(req.Content) == "" {
			util.RespondValidationError(c, "content", "articles require a body")
			return
		}
	} else if len(req.Files) == 0 {
		util.RespondValidationError(c, "files", "at least one file is required")
		return
	}

	displayOption := req.DisplayOption
	if displayOption == "" {
		displayOption = models.DisplayIndividual
	}
	if displayOption != models.DisplayIndividual && displayOption != models.DisplayCarousel {
		util.RespondValidationError(c, "display_option", "must be individual or carousel")
		return
	}

	upload := models.Upload{
		UserID:        userID,
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Link:          req.Link,
		Tags:          models.StringArray(req.Tags),
		Files:         req.Files,
		Content:       req.Content,
		DisplayOption: displayOption,
	}

	if err := database.DB.Create(&upload).Error; err != nil {
		logger.Error("create post failed", logger.WithUserID(userID), zap.Error(err))
		util.RespondInternalError(c, "Failed to create post")
		return
	}

	// Increment the author's upload counter, best effort
	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("upload_count", gorm.Expr("upload_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment upload count for user "+userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"post": upload})
}

// GetPost returns a single post with its author
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var upload models.Upload
	err := database.DB.Preload("User").First(&upload, "id = ?", postID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.RespondNotFound(c, "Post")
			return
		}
		util.RespondInternalError(c, "Failed to load post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": upload})
}

// ListPosts returns posts newest-first, optionally filtered by type or author
// GET /api/v1/posts?type=image&user_id=...&limit=20&offset=0
func (h *Handlers) ListPosts(c *gin.Context) {
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 50 {
		limit = 50
	}

	query := database.DB.Model(&models.Upload{}).Preload("User")

	if postType := c.Query("type"); postType != "" {
		if !models.ValidUploadType(postType) {
			util.RespondValidationError(c, "type", "unknown post type")
			return
		}
		query = query.Where("type = ?", postType)
	}
	if authorID := c.Query("user_id"); authorID != "" {
		query = query.Where("user_id = ?", authorID)
	}
	if before := c.Query("before"); before != "" {
		cursor, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			util.RespondValidationError(c, "before", "must be an RFC 3339 timestamp")
			return
		}
		query = query.Where("created_at < ?", cursor)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		util.RespondInternalError(c, "Failed to count posts")
		return
	}

	var uploads []models.Upload
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&uploads).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load posts")
		return
	}

	// next_cursor lets clients page by creation time instead of offset
	var nextCursor string
	if len(uploads) == limit {
		nextCursor = uploads[len(uploads)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       uploads,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(uploads) < int(totalCount),
		"next_cursor": nextCursor,
	})
}

// UpdatePostRequest is the body for editing a post. Pointers distinguish
// "not sent" from "set to empty".
type UpdatePostRequest struct {
	Title         *string               `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string               `json:"description" binding:"omitempty,max=2000"`
	Link          *string               `json:"link" binding:"omitempty,max=500"`
	Tags          *[]string             `json:"tags"`
	Files         *models.UploadedFiles `json:"files"`
	Content       *string               `json:"content"`
	DisplayOption *string               `json:"display_option"`
}

// UpdatePost edits a post owned by the caller
// PATCH /api/v1/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
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
		util.RespondInternalError(c, "Failed to load post")
		return
	}

	if upload.UserID != userID {
		util.RespondForbidden(c, "You can only edit your own posts")
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.Tags != nil {
		updates["tags"] = models.StringArray(*req.Tags)
	}
	if req.Files != nil {
		updates["files"] = *req.Files
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.DisplayOption != nil {
		if *req.DisplayOption != models.DisplayIndividual && *req.DisplayOption != models.DisplayCarousel {
			util.RespondValidationError(c, "display_option", "must be individual or carousel")
			return
		}
		updates["display_option"] = *req.DisplayOption
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"post": upload})
		return
	}

	if err := database.DB.Model(&upload).Updates(updates).Error; err != nil {
		logger.Error("update post failed", zap.String("post_id", postID), zap.Error(err))
		util.RespondInternalError(c, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": upload})
}

// DeletePost removes a post owned by the caller, along with its stored files
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
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
		util.RespondInternalError(c, "Failed to load post")
		return
	}

	if upload.UserID != userID {
		util.RespondForbidden(c, "You can only delete your own posts")
		return
	}

	// Bookmarks and saves referencing the post go with it
	tx := database.DB.Begin()
	if err := tx.Where("upload_id = ?", postID).Delete(&models.Bookmark{}).Error; err != nil {
		tx.Rollback()
		util.RespondInternalError(c, "Failed to delete post")
		return
	}
	if err := tx.Where("upload_id = ?", postID).Delete(&models.SavedPost{}).Error; err != nil {
		tx.Rollback()
		util.RespondInternalError(c, "Failed to delete post")
		return
	}
	if err := tx.Delete(&upload).Error; err != nil {
		tx.Rollback()
		util.RespondInternalError(c, "Failed to delete post")
		return
	}
	if err := tx.Commit().Error; err != nil {
		util.RespondInternalError(c, "Failed to delete post")
		return
	}

	// Blob cleanup is best effort; the post row is already gone
	for _, file := range upload.Files {
		relPath := blobPathFromURL(file.URL)
		if relPath == "" {
			continue
		}
		if err := h.blobs.Delete(c.Request.Context(), relPath); err != nil {
			logger.WarnWithFields("Failed to delete stored file "+relPath, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// blobPathFromURL recovers the storage path from a public file URL,
// e.g. "https://host/files/uploads/u1/pic.jpg?v=123" -> "uploads/u1/pic.jpg"
func blobPathFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	_, after, found := strings.Cut(parsed.Path, "/files/")
	if !found {
		return ""
	}
	unescaped, err := url.PathUnescape(after)
	if err != nil {
		return after
	}
	return unescaped
}
