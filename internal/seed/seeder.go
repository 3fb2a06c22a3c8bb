// Package seed fills the database with realistic development data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating bookmarks and saves...")
	if err := s.seedBookmarksAndSaves(users, posts, 300); err != nil {
		return fmt.Errorf("failed to seed bookmarks: %w", err)
	}

	logger.Log.Info("Creating conversations...")
	if err := s.seedConversations(users, 40); err != nil {
		return fmt.Errorf("failed to seed conversations: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a small fixed set of accounts
func (s *Seeder) SeedTest() error {
	specs := []struct {
		username    string
		email       string
		displayName string
	}{
		{"alice", "alice@example.com", "Alice Smith"},
		{"bob", "bob@example.com", "Bob Johnson"},
		{"charlie", "charlie@example.com", "Charlie Brown"},
	}

	var users []models.User
	for _, spec := range specs {
		var user models.User
		err := s.db.Where("username = ? OR email = ?", spec.username, spec.email).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hashedStr := string(hashed)

		user = models.User{
			Email:         spec.email,
			Username:      spec.username,
			DisplayName:   spec.displayName,
			PasswordHash:  &hashedStr,
			EmailVerified: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}

	if _, err := s.seedPosts(users, 10); err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	return nil
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	for _, table := range []string{
		"chat_messages",
		"conversations",
		"saved_posts",
		"bookmarks",
		"share_tokens",
		"uploads",
		"users",
	} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

var seedTags = []string{
	"photography", "travel", "design", "cooking", "music",
	"fitness", "art", "technology", "nature", "writing",
}

// seedUsers creates users with realistic data
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// Check if we already have seed users (users with @example.com email)
	var seedUserCount int64
	s.db.Model(&models.User{}).Where("email LIKE '%@example.com'").Count(&seedUserCount)
	if seedUserCount >= int64(count) {
		var users []models.User
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing seed users, skipping creation",
			zap.Int("total_users", len(users)))
		return users, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedStr := string(hashed)

	var users []models.User
	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		email := fmt.Sprintf("%s@example.com", username)

		// Ensure unique username/email
		var existing models.User
		for {
			if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == gorm.ErrRecordNotFound {
				break
			}
			username = gofakeit.Username()
			email = fmt.Sprintf("%s@example.com", username)
		}

		user := models.User{
			Email:         email,
			Username:      username,
			DisplayName:   gofakeit.Name(),
			Bio:           gofakeit.HipsterSentence(),
			PasswordHash:  &hashedStr,
			EmailVerified: true,
			AvatarURL:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}

	return users, nil
}

// seedPosts creates a mix of media posts and articles
func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Upload, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attach posts to")
	}

	types := []string{
		models.UploadTypeImage, models.UploadTypeImage, models.UploadTypeImage,
		models.UploadTypeVideo,
		models.UploadTypeDocument,
		models.UploadTypeArticle,
	}

	var posts []models.Upload
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		postType := types[rand.Intn(len(types))]

		tagCount := rand.Intn(3) + 1
		tags := make(models.StringArray, 0, tagCount)
		seen := make(map[string]bool)
		for len(tags) < tagCount {
			tag := seedTags[rand.Intn(len(seedTags))]
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}

		upload := models.Upload{
			UserID:      author.ID,
			Type:        postType,
			Title:       gofakeit.Sentence(rand.Intn(5) + 2),
			Description: gofakeit.Paragraph(1, 2, 8, " "),
			Tags:        tags,
		}

		if postType == models.UploadTypeArticle {
			upload.Content = gofakeit.Paragraph(3, 5, 12, "\n\n")
		} else {
			fileCount := 1
			if postType == models.UploadTypeImage {
				fileCount = rand.Intn(3) + 1
			}
			files := make(models.UploadedFiles, 0, fileCount)
			for j := 0; j < fileCount; j++ {
				name := fmt.Sprintf("%s-%d.jpg", gofakeit.Word(), j)
				files = append(files, models.UploadedFile{
					File: models.FileInfo{
						Name: name,
						Type: "image/jpeg",
						Size: int64(rand.Intn(4_000_000) + 100_000),
					},
					URL: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", name),
				})
			}
			upload.Files = files
			if fileCount > 1 {
				upload.DisplayOption = models.DisplayCarousel
			}
		}

		if err := s.db.Create(&upload).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, upload)
	}

	// Refresh cached upload counters
	if err := s.db.Exec(`UPDATE users SET upload_count = (SELECT COUNT(*) FROM uploads WHERE uploads.user_id = users.id)`).Error; err != nil {
		logger.WarnWithFields("Failed to refresh upload counts", err)
	}

	return posts, nil
}

// seedBookmarksAndSaves sprinkles bookmarks and saves across users
func (s *Seeder) seedBookmarksAndSaves(users []models.User, posts []models.Upload, count int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		// Half bookmarks, half saves; duplicates hit the unique index and are skipped
		if i%2 == 0 {
			bookmark := models.Bookmark{UserID: user.ID, UploadID: post.ID}
			if err := s.db.Create(&bookmark).Error; err != nil {
				continue
			}
			s.db.Model(&models.Upload{}).Where("id = ?", post.ID).
				UpdateColumn("bookmark_count", gorm.Expr("bookmark_count + 1"))
		} else {
			saved := models.SavedPost{UserID: user.ID, UploadID: post.ID}
			if err := s.db.Create(&saved).Error; err != nil {
				continue
			}
			s.db.Model(&models.Upload{}).Where("id = ?", post.ID).
				UpdateColumn("save_count", gorm.Expr("save_count + 1"))
		}
	}

	return nil
}

// seedConversations pairs users up and gives each pair a short exchange
func (s *Seeder) seedConversations(users []models.User, count int) error {
	if len(users) < 2 {
		return nil
	}

	for i := 0; i < count; i++ {
		x := users[rand.Intn(len(users))]
		y := users[rand.Intn(len(users))]
		if x.ID == y.ID {
			continue
		}

		a, b := models.ConversationPair(x.ID, y.ID)
		conv := models.Conversation{UserAID: a, UserBID: b}
		if err := s.db.Where("user_a_id = ? AND user_b_id = ?", a, b).
			FirstOrCreate(&conv).Error; err != nil {
			continue
		}

		messageCount := rand.Intn(6) + 2
		var lastAt time.Time
		for j := 0; j < messageCount; j++ {
			sender := x.ID
			if j%2 == 1 {
				sender = y.ID
			}
			message := models.ChatMessage{
				ConversationID: conv.ID,
				SenderID:       sender,
				Text:           gofakeit.Sentence(rand.Intn(8) + 2),
			}
			if err := s.db.Create(&message).Error; err != nil {
				return fmt.Errorf("failed to create message: %w", err)
			}
			lastAt = message.CreatedAt
		}

		if !lastAt.IsZero() {
			s.db.Model(&conv).UpdateColumn("last_message_at", lastAt)
		}
	}

	return nil
}
