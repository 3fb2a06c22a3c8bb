package handlers

import (
	"net/http"

	"github.com/sharespace-media/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) startConversation() string {
	w := suite.request(http.MethodPost, "/api/v1/conversations", map[string]string{
		"user_id": suite.peer.ID,
	}, suite.user.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	conv := suite.decode(w)["conversation"].(map[string]interface{})
	return conv["id"].(string)
}

func (suite *HandlersTestSuite) TestStartConversationIsIdempotent() {
	first := suite.startConversation()

	// Starting it from the other side returns the same conversation
	w := suite.request(http.MethodPost, "/api/v1/conversations", map[string]string{
		"user_id": suite.user.ID,
	}, suite.peer.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	conv := suite.decode(w)["conversation"].(map[string]interface{})
	assert.Equal(suite.T(), first, conv["id"])
}

func (suite *HandlersTestSuite) TestConversationWithSelfRejected() {
	w := suite.request(http.MethodPost, "/api/v1/conversations", map[string]string{
		"user_id": suite.user.ID,
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestSendAndReadMessages() {
	convID := suite.startConversation()

	w := suite.request(http.MethodPost, "/api/v1/conversations/"+convID+"/messages", map[string]string{
		"text": "hey bob",
	}, suite.user.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/conversations/"+convID+"/messages", map[string]string{
		"text": "hi alice",
	}, suite.peer.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/conversations/"+convID+"/messages", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	messages := suite.decode(w)["messages"].([]interface{})
	require.Len(suite.T(), messages, 2)

	// Newest first
	newest := messages[0].(map[string]interface{})
	assert.Equal(suite.T(), "hi alice", newest["text"])

	var conv models.Conversation
	require.NoError(suite.T(), suite.db.First(&conv, "id = ?", convID).Error)
	assert.NotNil(suite.T(), conv.LastMessageAt)
}

func (suite *HandlersTestSuite) TestOutsiderCannotReadConversation() {
	convID := suite.startConversation()
	outsider := suite.createTestUser("mallory", "mallory@example.com")

	w := suite.request(http.MethodGet, "/api/v1/conversations/"+convID+"/messages", nil, outsider.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/conversations/"+convID+"/messages", map[string]string{
		"text": "let me in",
	}, outsider.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestEmptyMessageRejected() {
	convID := suite.startConversation()

	w := suite.request(http.MethodPost, "/api/v1/conversations/"+convID+"/messages", map[string]string{
		"text": "   ",
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestListConversations() {
	suite.startConversation()

	w := suite.request(http.MethodGet, "/api/v1/conversations", nil, suite.user.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["conversations"], 1)

	// A third user has none
	outsider := suite.createTestUser("carol", "carol@example.com")
	w = suite.request(http.MethodGet, "/api/v1/conversations", nil, outsider.ID)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), suite.decode(w)["conversations"], 0)
}
