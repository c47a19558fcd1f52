package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/models"
)

// Ephemeral is the in process fallback store that is used when the database is
// not reachable at startup, records do not survive a process restart which is
// acceptable because passcodes expire within minutes anyway
type Ephemeral struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.OtpRecord
}

// NewEphemeral is a function that is used to create an empty in memory passcode store
func NewEphemeral() *Ephemeral {
	return &Ephemeral{
		records: make(map[uuid.UUID]*models.OtpRecord),
	}
}

// Create persists a new passcode record in the in memory mapping
func (e *Ephemeral) Create(_ context.Context, record *models.OtpRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if record.ID == nil {
		id := uuid.New()
		record.ID = &id
	}
	if record.CreatedAt == nil {
		now := time.Now().UTC()
		record.CreatedAt = &now
	}

	stored := *record
	e.records[*record.ID] = &stored
	return nil
}

// FindConsumable returns a copy of the oldest record that can satisfy the given
// identifier, code and purpose
func (e *Ephemeral) FindConsumable(_ context.Context, identifier, code, purpose string, now time.Time) (*models.OtpRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var oldest *models.OtpRecord
	for _, record := range e.records {
		if !record.Matches(identifier, code, purpose, now) {
			continue
		}
		if oldest == nil || record.CreatedAt.Before(*oldest.CreatedAt) {
			oldest = record
		}
	}
	if oldest == nil {
		return nil, errors.ErrOTPNotFound
	}

	found := *oldest
	return &found, nil
}

// MarkVerified flips the record to verified while holding the store lock, the
// returned boolean reports wether this call won the transition
func (e *Ephemeral) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.records[id]
	if !ok || record.Verified {
		return false, nil
	}

	record.Verified = true
	return true, nil
}

// RecordFailure increments the attempt counter on every live record for the
// identifier and purpose
func (e *Ephemeral) RecordFailure(_ context.Context, identifier, purpose string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, record := range e.records {
		if record.Verified || !record.ExpiresAt.After(now) {
			continue
		}
		if record.Email != identifier && record.Phone != identifier {
			continue
		}
		if record.Purpose != purpose {
			continue
		}

		record.Attempts++
	}

	return nil
}

// DeleteExpired removes every record whose expiry is at or before the given time
func (e *Ephemeral) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var removed int64
	for id, record := range e.records {
		if !record.ExpiresAt.After(before) {
			delete(e.records, id)
			removed++
		}
	}

	return removed, nil
}
