package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload types
const (
	UploadTypeImage    = "image"
	UploadTypeVideo    = "video"
	UploadTypeDocument = "document"
	UploadTypeArticle  = "article"
)

// Display options for multi-file posts
const (
	DisplayIndividual = "individual"
	DisplayCarousel   = "carousel"
)

// FileInfo is a serializable description of an uploaded file
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// CoverPhoto is an optional cover image attached to a file or article
type CoverPhoto struct {
	File    FileInfo `json:"file"`
	Preview string   `json:"preview"`
}

// UploadedFile describes one stored file belonging to an upload
type UploadedFile struct {
	File           FileInfo    `json:"file"`
	Preview        string      `json:"preview"`
	URL            string      `json:"url,omitempty"`
	AltText        string      `json:"alt_text,omitempty"`
	ObjectPosition string      `json:"object_position,omitempty"` // e.g. "top", "center", "bottom"
	CoverPhoto     *CoverPhoto `json:"cover_photo,omitempty"`
}

// UploadedFiles is stored as a jsonb column
type UploadedFiles []UploadedFile

// Upload represents a shared post: an image/video/document post or an article
type Upload struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type        string `gorm:"not null;index" json:"type"` // image, video, document, article
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Link        string `json:"link"`

	Tags  StringArray   `gorm:"type:text[]" json:"tags"`
	Files UploadedFiles `gorm:"type:jsonb;serializer:json" json:"files"`

	// Article body (empty for non-article uploads)
	Content string `gorm:"type:text" json:"content,omitempty"`

	DisplayOption string `gorm:"default:individual" json:"display_option"` // individual, carousel

	// Cached counters
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`
	SaveCount     int `gorm:"default:0" json:"save_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an ID when the database default is unavailable
func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// IsArticle reports whether the upload is an authored article
func (u *Upload) IsArticle() bool {
	return u.Type == UploadTypeArticle
}

// ValidUploadType reports whether t is a known upload type
func ValidUploadType(t string) bool {
	switch t {
	case UploadTypeImage, UploadTypeVideo, UploadTypeDocument, UploadTypeArticle:
		return true
	}
	return false
}

// Bookmark marks an upload a user wants to revisit
type Bookmark struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"not null;index:idx_bookmarks_user_upload,unique" json:"user_id"`
	UploadID string `gorm:"not null;index:idx_bookmarks_user_upload,unique" json:"upload_id"`
	Upload   Upload `gorm:"foreignKey:UploadID" json:"upload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// SavedPost is the "saved" collection. Users keep it separate from
// bookmarks, so it gets its own table and counters.
type SavedPost struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"not null;index:idx_saved_posts_user_upload,unique" json:"user_id"`
	UploadID string `gorm:"not null;index:idx_saved_posts_user_upload,unique" json:"upload_id"`
	Upload   Upload `gorm:"foreignKey:UploadID" json:"upload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
