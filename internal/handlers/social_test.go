package handlers

import (
	"net/http"

	"github.com/sharespace-media/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestBookmarkLifecycle() {
	post := suite.createTestPost(suite.peer.ID, "Worth keeping", nil)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/bookmark", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), true, suite.decode(w)["bookmarked"])

	// Bookmarking again is idempotent
	w = suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/bookmark", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Upload
	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.BookmarkCount)

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post.ID+"/bookmarked", nil, suite.user.ID)
	assert.Equal(suite.T(), true, suite.decode(w)["bookmarked"])

	w = suite.request(http.MethodGet, "/api/v1/users/me/bookmarks", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	resp := suite.decode(w)
	assert.Len(suite.T(), resp["bookmarks"], 1)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID+"/bookmark", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	require.NoError(suite.T(), suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(suite.T(), 0, reloaded.BookmarkCount)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID+"/bookmark", nil, suite.user.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestSavedPostsAreSeparateFromBookmarks() {
	post := suite.createTestPost(suite.peer.ID, "Saved but not bookmarked", nil)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/save", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/users/me/saved", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["saved"], 1)

	// The bookmark list stays empty
	w = suite.request(http.MethodGet, "/api/v1/users/me/bookmarks", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["bookmarks"], 0)

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post.ID+"/saved", nil, suite.user.ID)
	assert.Equal(suite.T(), true, suite.decode(w)["saved"])

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID+"/save", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post.ID+"/saved", nil, suite.user.ID)
	assert.Equal(suite.T(), false, suite.decode(w)["saved"])
}

func (suite *HandlersTestSuite) TestBookmarkMissingPost() {
	w := suite.request(http.MethodPost, "/api/v1/posts/no-such-post/bookmark", nil, suite.user.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
