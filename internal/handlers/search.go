package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/util"
)

// SearchPosts finds posts whose title or tags contain the query,
// case-insensitive. An empty query returns an empty result set.
// GET /api/v1/search?q=...&limit=20&offset=0
func (h *Handlers) SearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{
			"posts":       []models.Upload{},
			"total_count": 0,
		})
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	if limit > 50 {
		limit = 50
	}

	// Casting tags to text makes the match work on both Postgres arrays
	// and the plain-text column used in tests
	pattern := "%" + strings.ToLower(query) + "%"
	dbQuery := database.DB.Model(&models.Upload{}).Preload("User").
		Where("LOWER(title) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ?", pattern, pattern)

	var totalCount int64
	if err := dbQuery.Count(&totalCount).Error; err != nil {
		util.RespondInternalError(c, "Search failed")
		return
	}

	var uploads []models.Upload
	err := dbQuery.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&uploads).Error
	if err != nil {
		util.RespondInternalError(c, "Search failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       uploads,
		"total_count": totalCount,
		"query":       query,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(uploads) < int(totalCount),
	})
}
