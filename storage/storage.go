// Package storage contains the interchangable persistence backends for one time passcodes
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/venbook/auth/models"
)

// Store is the contract that every passcode backend must satisfy, the durable
// postgres store and the in memory fallback store implement it identically
type Store interface {
	// Create persists a new passcode record, multiple records for the same
	// identifier and purpose are valid and must never be deduplicated
	Create(ctx context.Context, record *models.OtpRecord) error
	// FindConsumable returns a record that can satisfy the given identifier,
	// code and purpose at the given time, errors.ErrOTPNotFound is returned
	// when no such record exists
	FindConsumable(ctx context.Context, identifier, code, purpose string, now time.Time) (*models.OtpRecord, error)
	// MarkVerified flips the record to verified, the returned boolean reports
	// wether this call won the transition, marking an already verified record
	// reports false without an error
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
	// RecordFailure increments the attempt counter on every live record for
	// the identifier and purpose
	RecordFailure(ctx context.Context, identifier, purpose string, now time.Time) error
	// DeleteExpired bulk removes every record whose expiry is at or before
	// the given time and returns the amount of records that were removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
