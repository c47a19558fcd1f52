package storage

import (
	"context"
	errs "errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/models"
	"gorm.io/gorm"
)

// Durable is the postgres backed passcode store, every operation is retried
// with a linear backoff before the failure is surfaced to the caller
type Durable struct {
	db *gorm.DB
}

// NewDurable is a function that is used to create a durable passcode store on
// top of an established database connection
func NewDurable(db *gorm.DB) *Durable {
	return &Durable{db: db}
}

// Create persists a new passcode record, the id and the creation time are
// assigned before the first insert so that a retried insert that already
// succeeded shows up as a duplicate key and is treated as done
func (d *Durable) Create(ctx context.Context, record *models.OtpRecord) error {
	if record.ID == nil {
		id := uuid.New()
		record.ID = &id
	}
	if record.CreatedAt == nil {
		now := time.Now().UTC()
		record.CreatedAt = &now
	}

	return withRetry(ctx, func(ctx context.Context) error {
		err := d.db.WithContext(ctx).Create(record).Error
		if err == nil {
			return nil
		}
		if ok := (errors.CheckDBError{}.DuplicateKey(err)); ok {
			return nil
		}
		return retry.RetryableError(err)
	})
}

// FindConsumable returns the oldest record that can satisfy the given
// identifier, code and purpose, the identifier is matched against both the
// email and the phone columns
func (d *Durable) FindConsumable(ctx context.Context, identifier, code, purpose string, now time.Time) (*models.OtpRecord, error) {
	var record models.OtpRecord
	err := withRetry(ctx, func(ctx context.Context) error {
		err := d.db.WithContext(ctx).
			Where("(email = ? OR phone = ?)", identifier, identifier).
			Where("code = ? AND purpose = ?", code, purpose).
			Where("verified = ? AND attempts < max_attempts AND expires_at > ?", false, now).
			Order("created_at asc").
			First(&record).Error
		if err == nil {
			return nil
		}
		if errs.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrOTPNotFound
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// MarkVerified flips the record to verified with a conditional update so that
// two racing callers can never both win the transition
func (d *Durable) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	var won bool
	err := withRetry(ctx, func(ctx context.Context) error {
		tx := d.db.WithContext(ctx).
			Model(&models.OtpRecord{}).
			Where("id = ? AND verified = ?", id, false).
			Update("verified", true)
		if tx.Error != nil {
			return retry.RetryableError(tx.Error)
		}

		won = tx.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return won, nil
}

// RecordFailure increments the attempt counter on every live record for the
// identifier and purpose, a record that reaches its attempt cap stops being
// consumable
func (d *Durable) RecordFailure(ctx context.Context, identifier, purpose string, now time.Time) error {
	return withRetry(ctx, func(ctx context.Context) error {
		err := d.db.WithContext(ctx).
			Model(&models.OtpRecord{}).
			Where("(email = ? OR phone = ?)", identifier, identifier).
			Where("purpose = ? AND verified = ? AND expires_at > ?", purpose, false, now).
			UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// DeleteExpired bulk removes every record whose expiry is at or before the given time
func (d *Durable) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := withRetry(ctx, func(ctx context.Context) error {
		tx := d.db.WithContext(ctx).
			Where("expires_at <= ?", before).
			Delete(&models.OtpRecord{})
		if tx.Error != nil {
			return retry.RetryableError(tx.Error)
		}

		removed = tx.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
