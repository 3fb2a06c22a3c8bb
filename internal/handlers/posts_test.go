package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sharespace-media/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestCreateAndGetPost() {
	w := suite.request(http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"type":  "image",
		"title": "Sunset over the bay",
		"tags":  []string{"photography", "sunset"},
		"files": []map[string]interface{}{
			{"file": map[string]interface{}{"name": "sunset.jpg", "type": "image/jpeg", "size": 2048}},
		},
	}, suite.user.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	resp := suite.decode(w)
	post := resp["post"].(map[string]interface{})
	postID := post["id"].(string)
	require.NotEmpty(suite.T(), postID)
	assert.Equal(suite.T(), "Sunset over the bay", post["title"])

	w = suite.request(http.MethodGet, "/api/v1/posts/"+postID, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp = suite.decode(w)
	post = resp["post"].(map[string]interface{})
	assert.Equal(suite.T(), suite.user.ID, post["user_id"])
}

func (suite *HandlersTestSuite) TestCreateArticleRequiresContent() {
	w := suite.request(http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"type":  "article",
		"title": "My thoughts",
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"type":    "article",
		"title":   "My thoughts",
		"content": "A longer body of text.",
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePostRejectsUnknownType() {
	w := suite.request(http.MethodPost, "/api/v1/posts", map[string]interface{}{
		"type":  "podcast",
		"title": "Nope",
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestListPostsFiltersAndPaginates() {
	suite.createTestPost(suite.user.ID, "First", nil)
	suite.createTestPost(suite.user.ID, "Second", nil)
	suite.createTestPost(suite.peer.ID, "Third", nil)

	w := suite.request(http.MethodGet, "/api/v1/posts?limit=2", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Len(suite.T(), resp["posts"], 2)
	assert.Equal(suite.T(), float64(3), resp["total_count"])
	assert.Equal(suite.T(), true, resp["has_more"])

	w = suite.request(http.MethodGet, "/api/v1/posts?user_id="+suite.peer.ID, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp = suite.decode(w)
	assert.Len(suite.T(), resp["posts"], 1)
}

func (suite *HandlersTestSuite) TestListPostsCursor() {
	suite.createTestPost(suite.user.ID, "Only", nil)

	future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339Nano)
	w := suite.request(http.MethodGet, "/api/v1/posts?before="+url.QueryEscape(future), nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["posts"], 1)

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano)
	w = suite.request(http.MethodGet, "/api/v1/posts?before="+url.QueryEscape(past), nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["posts"], 0)

	w = suite.request(http.MethodGet, "/api/v1/posts?before=not-a-timestamp", nil, "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestUpdatePostOwnershipEnforced() {
	post := suite.createTestPost(suite.user.ID, "Original title", nil)

	w := suite.request(http.MethodPatch, "/api/v1/posts/"+post.ID, map[string]interface{}{
		"title": "Hijacked",
	}, suite.peer.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, "/api/v1/posts/"+post.ID, map[string]interface{}{
		"title": "Updated title",
	}, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Upload
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(suite.T(), "Updated title", reloaded.Title)
}

func (suite *HandlersTestSuite) TestDeletePostRemovesBookmarks() {
	post := suite.createTestPost(suite.user.ID, "Doomed", nil)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/bookmark", nil, suite.peer.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID, nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Bookmark{}).Where("upload_id = ?", post.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post.ID, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestSearchMatchesTitleAndTags() {
	suite.createTestPost(suite.user.ID, "Golang concurrency patterns", []string{"programming"})
	suite.createTestPost(suite.user.ID, "Vacation photos", []string{"travel", "golang-conf"})
	suite.createTestPost(suite.peer.ID, "Recipe collection", []string{"cooking"})

	w := suite.request(http.MethodGet, "/api/v1/search?q=golang", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	assert.Equal(suite.T(), float64(2), resp["total_count"])

	// Case-insensitive
	w = suite.request(http.MethodGet, "/api/v1/search?q=GOLANG", nil, "")
	resp = suite.decode(w)
	assert.Equal(suite.T(), float64(2), resp["total_count"])

	// Empty query returns nothing
	w = suite.request(http.MethodGet, "/api/v1/search?q=", nil, "")
	resp = suite.decode(w)
	assert.Equal(suite.T(), float64(0), resp["total_count"])
}

func (suite *HandlersTestSuite) TestGetUserProfile() {
	w := suite.request(http.MethodGet, "/api/v1/users/alice", nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decode(w)
	user := resp["user"].(map[string]interface{})
	assert.Equal(suite.T(), "alice", user["username"])

	w = suite.request(http.MethodGet, "/api/v1/users/nobody", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
