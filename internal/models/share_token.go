package models

import "time"

// ShareToken is the database row backing a one-time share link.
// The record exists from issuance until the first successful retrieval,
// which deletes it. No soft-delete: a consumed token must be gone.
type ShareToken struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Payload  string `gorm:"type:text;not null" json:"payload"`
	FileName string `json:"file_name"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
