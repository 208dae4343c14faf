package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gmail-sender-stats-go/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the
	// same in-memory store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SeenMail{}, &models.Sender{}))
	return db
}

func TestSeenAndMarkSeen(t *testing.T) {
	repo := New(newTestDB(t))

	seen, err := repo.Seen("m1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.MarkSeen("m1"))

	seen, err = repo.Seen("m1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = repo.Seen("m2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMarkSeenDuplicate(t *testing.T) {
	repo := New(newTestDB(t))

	require.NoError(t, repo.MarkSeen("m1"))

	err := repo.MarkSeen("m1")
	require.Error(t, err)

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestIncrementSender(t *testing.T) {
	repo := New(newTestDB(t))

	for want := int64(1); want <= 3; want++ {
		count, err := repo.IncrementSender("a@x.com")
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	count, err := repo.IncrementSender("b@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordMessage(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)

	count, err := repo.RecordMessage("m1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	seen, err := repo.Seen("m1")
	require.NoError(t, err)
	assert.True(t, seen)

	var sender models.Sender
	require.NoError(t, db.Where("sender = ?", "a@x.com").First(&sender).Error)
	assert.Equal(t, int64(1), sender.MailsSent)
}

func TestRecordMessageIsAtomic(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)

	// Force the seen-mark to violate the primary key so the transaction
	// rolls back.
	require.NoError(t, repo.MarkSeen("m1"))

	_, err := repo.RecordMessage("m1", "a@x.com")
	require.Error(t, err)

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))

	// The increment must have rolled back with the failed seen-mark.
	var count int64
	require.NoError(t, db.Model(&models.Sender{}).Where("sender = ?", "a@x.com").Count(&count).Error)
	assert.Zero(t, count)
}
