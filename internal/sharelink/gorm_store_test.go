package sharelink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sharespace-media/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.ShareToken{}))
	return db
}

func TestGormStorePutAndGetAndDelete(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	token := Token{
		ID:        NewID(),
		Payload:   "data:text/plain;base64,aGVsbG8=",
		FileName:  "hello.txt",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, token))

	got, err := store.GetAndDelete(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, token.Payload, got.Payload)
	assert.Equal(t, token.FileName, got.FileName)

	_, err = store.GetAndDelete(ctx, token.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreUnknownID(t *testing.T) {
	store := NewGormStore(setupTestDB(t))

	_, err := store.GetAndDelete(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreConcurrentConsume(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	token := Token{
		ID:        NewID(),
		Payload:   "data:text/plain;base64,aGVsbG8=",
		FileName:  "hello.txt",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Put(ctx, token))

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.GetAndDelete(ctx, token.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestGormStoreDeleteOlderThan(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	old := Token{ID: NewID(), Payload: "data:text/plain;base64,QQ==", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := Token{ID: NewID(), Payload: "data:text/plain;base64,Qg==", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Put(ctx, old))
	require.NoError(t, store.Put(ctx, fresh))

	n, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.GetAndDelete(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetAndDelete(ctx, fresh.ID)
	assert.NoError(t, err)
}
