package handlers

import (
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataURI = "data:text/plain;base64,aGVsbG8gd29ybGQ="

func (suite *HandlersTestSuite) TestShareLinkRoundTrip() {
	w := suite.request(http.MethodPost, "/api/v1/secure-links", map[string]string{
		"payload":   testDataURI,
		"file_name": "hello.txt",
	}, suite.user.ID)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	resp := suite.decode(w)
	assert.Equal(suite.T(), true, resp["success"])

	url, ok := resp["url"].(string)
	require.True(suite.T(), ok)
	require.Contains(suite.T(), url, "/s/")

	id := url[strings.LastIndex(url, "/")+1:]
	require.NotEmpty(suite.T(), id)

	// First retrieval returns the payload
	w = suite.request(http.MethodGet, "/api/v1/secure-links/"+id, nil, "")
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp = suite.decode(w)
	assert.Equal(suite.T(), testDataURI, resp["payload"])
	assert.Equal(suite.T(), "hello.txt", resp["fileName"])

	// Second retrieval finds nothing: the link was destroyed on first use
	w = suite.request(http.MethodGet, "/api/v1/secure-links/"+id, nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestShareLinkRequiresAuth() {
	w := suite.request(http.MethodPost, "/api/v1/secure-links", map[string]string{
		"payload":   testDataURI,
		"file_name": "hello.txt",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestShareLinkRejectsMalformedPayload() {
	for _, payload := range []string{
		"not a data uri",
		"data:text/plain,plain-text-not-base64",
		"data:text/plain;base64,!!!not-base64!!!",
	} {
		w := suite.request(http.MethodPost, "/api/v1/secure-links", map[string]string{
			"payload":   payload,
			"file_name": "bad.txt",
		}, suite.user.ID)
		assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code, "payload: %s", payload)
	}
}

func (suite *HandlersTestSuite) TestShareLinkMissingFields() {
	w := suite.request(http.MethodPost, "/api/v1/secure-links", map[string]string{
		"payload": testDataURI,
	}, suite.user.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestShareLinkUnknownID() {
	w := suite.request(http.MethodGet, "/api/v1/secure-links/does-not-exist", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}
