package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sharespace-media/backend/internal/auth"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/sharelink"
	"github.com/sharespace-media/backend/internal/storage"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HandlersTestSuite exercises the HTTP handlers against an in-memory database
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	links    *sharelink.Service
	user     *models.User
	peer     *models.User
}

func (suite *HandlersTestSuite) SetupSuite() {
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open("file:handlers_test?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	// Schemas created by hand: the production defaults are Postgres-specific
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			bio TEXT DEFAULT '',
			password_hash TEXT,
			email_verified BOOLEAN DEFAULT 0,
			google_id TEXT,
			avatar_url TEXT DEFAULT '',
			upload_count INTEGER DEFAULT 0,
			last_active_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			link TEXT DEFAULT '',
			tags TEXT,
			files TEXT,
			content TEXT DEFAULT '',
			display_option TEXT DEFAULT 'individual',
			bookmark_count INTEGER DEFAULT 0,
			save_count INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			upload_id TEXT NOT NULL,
			created_at DATETIME,
			UNIQUE(user_id, upload_id)
		)`,
		`CREATE TABLE IF NOT EXISTS saved_posts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			upload_id TEXT NOT NULL,
			created_at DATETIME,
			UNIQUE(user_id, upload_id)
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_a_id TEXT NOT NULL,
			user_b_id TEXT NOT NULL,
			last_message_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME,
			UNIQUE(user_a_id, user_b_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME,
			deleted_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		require.NoError(suite.T(), db.Exec(stmt).Error)
	}

	database.DB = db
	suite.db = db

	blobs, err := storage.NewLocalStore(suite.T().TempDir(), "http://localhost:8788")
	require.NoError(suite.T(), err)

	suite.links = sharelink.NewService(sharelink.NewMemoryStore(), sharelink.Options{
		BaseURL:         "http://localhost:8788",
		MaxPayloadBytes: 1 << 20,
	})

	authService := auth.NewService([]byte("handlers-test-secret"), time.Hour, "http://localhost:8788", "", "")
	suite.handlers = NewHandlers(authService, blobs, suite.links, 1<<20)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.setupRoutes()
}

func (suite *HandlersTestSuite) SetupTest() {
	for _, table := range []string{"chat_messages", "conversations", "saved_posts", "bookmarks", "uploads", "users"} {
		require.NoError(suite.T(), suite.db.Exec("DELETE FROM "+table).Error)
	}
	suite.user = suite.createTestUser("alice", "alice@example.com")
	suite.peer = suite.createTestUser("bob", "bob@example.com")
}

// setupRoutes wires the same routes the server exposes, with a header-based
// auth stub standing in for JWT validation
func (suite *HandlersTestSuite) setupRoutes() {
	authMiddleware := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Set("user", &user)
		c.Next()
	}

	api := suite.router.Group("/api/v1")

	api.GET("/secure-links/:id", suite.handlers.ConsumeShareLink)
	api.GET("/posts", suite.handlers.ListPosts)
	api.GET("/posts/:id", suite.handlers.GetPost)
	api.GET("/search", suite.handlers.SearchPosts)
	api.GET("/users/:username", suite.handlers.GetUserProfile)

	authed := api.Group("")
	authed.Use(authMiddleware)
	authed.POST("/secure-links", suite.handlers.CreateShareLink)
	authed.POST("/posts", suite.handlers.CreatePost)
	authed.PATCH("/posts/:id", suite.handlers.UpdatePost)
	authed.DELETE("/posts/:id", suite.handlers.DeletePost)
	authed.POST("/posts/:id/bookmark", suite.handlers.BookmarkPost)
	authed.DELETE("/posts/:id/bookmark", suite.handlers.UnbookmarkPost)
	authed.GET("/posts/:id/bookmarked", suite.handlers.IsPostBookmarked)
	authed.POST("/posts/:id/save", suite.handlers.SavePost)
	authed.DELETE("/posts/:id/save", suite.handlers.UnsavePost)
	authed.GET("/posts/:id/saved", suite.handlers.IsPostSaved)
	authed.GET("/users/me/bookmarks", suite.handlers.GetBookmarks)
	authed.GET("/users/me/saved", suite.handlers.GetSavedPosts)
	authed.POST("/conversations", suite.handlers.StartConversation)
	authed.GET("/conversations", suite.handlers.ListConversations)
	authed.POST("/conversations/:id/messages", suite.handlers.SendMessage)
	authed.GET("/conversations/:id/messages", suite.handlers.GetMessages)
	authed.POST("/files", suite.handlers.UploadFile)
	authed.DELETE("/files", suite.handlers.DeleteFile)
}

func (suite *HandlersTestSuite) createTestUser(username, email string) *models.User {
	user := &models.User{
		ID:          uuid.New().String(),
		Email:       email,
		Username:    username,
		DisplayName: username,
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *HandlersTestSuite) createTestPost(userID, title string, tags []string) *models.Upload {
	upload := &models.Upload{
		ID:     uuid.New().String(),
		UserID: userID,
		Type:   models.UploadTypeImage,
		Title:  title,
		Tags:   models.StringArray(tags),
		Files: models.UploadedFiles{
			{File: models.FileInfo{Name: "pic.jpg", Type: "image/jpeg", Size: 1024}},
		},
		DisplayOption: models.DisplayIndividual,
	}
	require.NoError(suite.T(), suite.db.Create(upload).Error)
	return upload
}

// request performs an HTTP request against the test router
func (suite *HandlersTestSuite) request(method, path string, body interface{}, userID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
