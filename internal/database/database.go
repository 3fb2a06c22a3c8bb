package database

import (
	"fmt"
	"time"

	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(dsn string, development bool) error {
	gormLogger := gormlogger.Default
	if development {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	logger.Log.Info("Database connected")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID generation for PostgreSQL
	if err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		logger.WarnWithFields("Could not create pgcrypto extension", err)
	}

	err := DB.AutoMigrate(
		&models.User{},
		&models.Upload{},
		&models.Bookmark{},
		&models.SavedPost{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.ShareToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes
func createIndexes() error {
	// User lookups are case-insensitive
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")

	// Upload feed and profile queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_user_created ON uploads (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_created ON uploads (created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_type ON uploads (type)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_tags ON uploads USING GIN (tags)")

	// Substring search over titles
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_title_lower ON uploads (LOWER(title))")

	// Chat history
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_chat_messages_conv_created ON chat_messages (conversation_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_conversations_last_message ON conversations (last_message_at DESC)")

	// TTL sweep over share tokens
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_share_tokens_created ON share_tokens (created_at)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
