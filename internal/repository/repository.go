package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gmail-sender-stats-go/internal/models"
)

// StorageError wraps a failed durable-storage operation. Constraint
// violations are surfaced, not masked; a duplicate seen-mark means the
// check-then-act flow was broken somewhere.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Repository provides access to the seen-mail set and the per-sender counts
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Seen reports whether a message identifier has already been fully processed
func (r *Repository) Seen(messageID string) (bool, error) {
	return seen(r.db, messageID)
}

// MarkSeen records a message identifier as processed
func (r *Repository) MarkSeen(messageID string) error {
	return markSeen(r.db, messageID)
}

// IncrementSender adds one to the sender's cumulative count and returns the
// new value. The read-modify-write runs in its own transaction so concurrent
// increments on the same sender cannot lose an update.
func (r *Repository) IncrementSender(sender string) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		count, txErr = incrementSender(tx, sender)
		return txErr
	})
	if err != nil {
		return 0, asStorageError("increment sender count", err)
	}
	return count, nil
}

// RecordMessage applies both writes for a newly processed message as one
// transaction: the sender count increment and the seen-mark either both
// commit or neither does. Returns the sender's new count.
func (r *Repository) RecordMessage(messageID, sender string) (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		n, txErr := incrementSender(tx, sender)
		if txErr != nil {
			return txErr
		}
		count = n
		return markSeen(tx, messageID)
	})
	if err != nil {
		return 0, asStorageError("record message", err)
	}
	return count, nil
}

func seen(tx *gorm.DB, messageID string) (bool, error) {
	var mail models.SeenMail
	result := tx.Where("mail_id = ?", messageID).First(&mail)
	if result.Error == nil {
		return true, nil
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, &StorageError{Op: "check seen mail", Err: result.Error}
}

func markSeen(tx *gorm.DB, messageID string) error {
	result := tx.Create(&models.SeenMail{MailID: messageID})
	if result.Error != nil {
		return &StorageError{Op: "mark mail seen", Err: result.Error}
	}
	return nil
}

func incrementSender(tx *gorm.DB, sender string) (int64, error) {
	var row models.Sender
	result := tx.Where("sender = ?", sender).First(&row)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.Sender{Sender: sender, MailsSent: 1}
		if res := tx.Create(&row); res.Error != nil {
			return 0, &StorageError{Op: "insert sender count", Err: res.Error}
		}
		return 1, nil
	}
	if result.Error != nil {
		return 0, &StorageError{Op: "read sender count", Err: result.Error}
	}

	row.MailsSent++
	res := tx.Model(&models.Sender{}).Where("sender = ?", sender).Update("mails_sent", row.MailsSent)
	if res.Error != nil {
		return 0, &StorageError{Op: "update sender count", Err: res.Error}
	}
	return row.MailsSent, nil
}

// asStorageError keeps the inner typed error when the transaction callback
// already produced one
func asStorageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
