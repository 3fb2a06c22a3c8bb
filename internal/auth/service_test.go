package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with a SQLite-compatible
// users table (AutoMigrate would carry PostgreSQL defaults).
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT NOT NULL,
			display_name TEXT NOT NULL,
			bio TEXT,
			password_hash TEXT,
			email_verified INTEGER DEFAULT 0,
			google_id TEXT,
			avatar_url TEXT,
			upload_count INTEGER DEFAULT 0,
			last_active_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	database.DB = db
	return db
}

func newTestService(t *testing.T) *Service {
	setupTestDB(t)
	logger.InitializeForTests()
	return NewService([]byte("test-secret-test-secret"), time.Hour, "http://localhost:8788", "", "")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{
		Email:       "ada@example.com",
		Username:    "ada",
		Password:    "correct-horse",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada", resp.User.Username)
	require.NotNil(t, resp.User.PasswordHash)

	login, err := svc.Login(LoginRequest{Email: "Ada@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{Email: "a@b.com", Username: "first", Password: "password1", DisplayName: "First"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Email: "A@B.com", Username: "second", Password: "password1", DisplayName: "Second"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{Email: "a@b.com", Username: "taken", Password: "password1", DisplayName: "First"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Email: "c@d.com", Username: "Taken", Password: "password1", DisplayName: "Second"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{Email: "a@b.com", Username: "ada", Password: "password1", DisplayName: "Ada"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Email: "nobody@b.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(RegisterRequest{Email: "a@b.com", Username: "ada", Password: "password1", DisplayName: "Ada"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	// Token signed with a different secret is rejected
	other := NewService([]byte("other-secret-other-secret"), time.Hour, "http://localhost:8788", "", "")
	otherResp, err := other.Register(RegisterRequest{Email: "x@y.com", Username: "eve", Password: "password1", DisplayName: "Eve"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(otherResp.Token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	svc := newTestService(t)
	gin.SetMode(gin.TestMode)

	resp, err := svc.Register(RegisterRequest{Email: "a@b.com", Username: "ada", Password: "password1", DisplayName: "Ada"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", svc.Middleware(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	// Valid token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Missing header
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Header without Bearer prefix
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", resp.Token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
