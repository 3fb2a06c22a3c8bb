package sharelink

import (
	"context"
	"fmt"
	"time"

	"github.com/sharespace-media/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists tokens in the relational database. Consumption is a
// single DELETE ... RETURNING statement, so the database serializes
// concurrent consumers of one id: exactly one sees the row.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed token store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Put inserts a token row
func (g *GormStore) Put(ctx context.Context, t Token) error {
	row := models.ShareToken{
		ID:        t.ID,
		Payload:   t.Payload,
		FileName:  t.FileName,
		CreatedAt: t.CreatedAt,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert share token: %w", err)
	}
	return nil
}

// GetAndDelete deletes the row by id and returns its former contents.
// RETURNING is supported by both PostgreSQL and SQLite, so the same
// statement backs production and tests.
func (g *GormStore) GetAndDelete(ctx context.Context, id string) (Token, error) {
	var row models.ShareToken
	result := g.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&row)

	if result.Error != nil {
		return Token{}, fmt.Errorf("failed to consume share token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return Token{}, ErrNotFound
	}

	return Token{
		ID:        row.ID,
		Payload:   row.Payload,
		FileName:  row.FileName,
		CreatedAt: row.CreatedAt,
	}, nil
}

// DeleteOlderThan removes unconsumed tokens created before cutoff
func (g *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result := g.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ShareToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep share tokens: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
