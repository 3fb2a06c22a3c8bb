package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) uploadMultipart(filename string, content []byte, userID string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(suite.T(), err)
	_, err = part.Write(content)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestUploadAndDeleteFile() {
	w := suite.uploadMultipart("photo.jpg", []byte("fake image bytes"), suite.user.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	resp := suite.decode(w)
	file := resp["file"].(map[string]interface{})
	url := file["url"].(string)
	assert.Contains(suite.T(), url, "/files/uploads/"+suite.user.ID+"/")
	assert.Contains(suite.T(), url, "?v=") // cache busting

	relPath := "uploads/" + suite.user.ID + "/" + file["filename"].(string)
	w = suite.request(http.MethodDelete, "/api/v1/files", map[string]string{"path": relPath}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	// Deleting again reports not found
	w = suite.request(http.MethodDelete, "/api/v1/files", map[string]string{"path": relPath}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUploadRequiresAuth() {
	w := suite.uploadMultipart("photo.jpg", []byte("data"), "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestCannotDeleteOtherUsersFiles() {
	w := suite.request(http.MethodDelete, "/api/v1/files", map[string]string{
		"path": "uploads/" + suite.peer.ID + "/secret.txt",
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}
