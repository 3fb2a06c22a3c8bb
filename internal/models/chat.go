package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a direct-message thread between two users.
// UserAID is always the lexicographically smaller of the pair so a
// conversation between two users maps to exactly one row.
type Conversation struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserAID string `gorm:"not null;index:idx_conversations_pair,unique" json:"user_a_id"`
	UserBID string `gorm:"not null;index:idx_conversations_pair,unique" json:"user_b_id"`
	UserA   User   `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserB   User   `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`

	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an ID when the database default is unavailable
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Peer returns the other participant's user ID
func (c *Conversation) Peer(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Includes reports whether userID participates in the conversation
func (c *Conversation) Includes(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// ConversationPair orders two user IDs into the canonical (a, b) pair
func ConversationPair(x, y string) (string, string) {
	if x < y {
		return x, y
	}
	return y, x
}

// ChatMessage is a single message inside a conversation
type ChatMessage struct {
	ID             string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ConversationID string       `gorm:"not null;index" json:"conversation_id"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	SenderID       string       `gorm:"not null;index" json:"sender_id"`
	Sender         User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Text string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
