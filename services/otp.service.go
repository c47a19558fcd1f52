package services

import (
	"context"
	errs "errors"
	"fmt"
	"strings"
	"time"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/redis/go-redis/v9"
	"github.com/venbook/auth/enums"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/models"
	"github.com/venbook/auth/storage"
	"github.com/venbook/auth/utils"
)

const (
	codeExpiration     = 5 * time.Minute
	defaultMaxAttempts = 3
	resendCooldown     = 30 * time.Second
)

// Sender delivers an issued passcode to its destination, delivery is best
// effort and a delivery failure never unwinds the persisted record
type Sender interface {
	Send(destination, code, purpose string) error
}

// OTP contains all the passcode related services, the store and the sender are
// injected so that tests can swap them freely
type OTP struct {
	Store    storage.Store
	Sender   Sender
	Cooldown *redis.Client
	Generate func() string
	Now      func() time.Time
}

// Send is a function that is used to issue a new passcode for the given
// identifier and purpose, the passcode is persisted first and then handed to
// the delivery collaborator
func (s *OTP) Send(ctx context.Context, identifier, purpose string) (models.OtpRecord, error) {
	if identifier == "" {
		return models.OtpRecord{}, errors.ErrBadRequest
	}
	if purpose == "" {
		purpose = enums.PurposeSignup
	}

	if s.Cooldown != nil {
		key := fmt.Sprintf("otp_cooldown:%s:%s", identifier, purpose)
		ok, err := s.Cooldown.SetNX(ctx, key, "1", resendCooldown).Result()
		if err != nil {
			logger.Error(err)
		} else if !ok {
			return models.OtpRecord{}, errors.ErrTooManyRequests
		}
	}

	now := s.now()
	record := models.OtpRecord{
		Code:        s.generate(),
		Purpose:     purpose,
		MaxAttempts: defaultMaxAttempts,
		CreatedAt:   &now,
		ExpiresAt:   now.Add(codeExpiration),
	}
	if strings.Contains(identifier, "@") {
		record.Email = identifier
	} else {
		record.Phone = identifier
	}

	if err := s.Store.Create(ctx, &record); err != nil {
		logger.Error(err)
		return models.OtpRecord{}, errors.ErrStorageUnavailable
	}

	if s.Sender != nil {
		go func() {
			if err := s.Sender.Send(identifier, record.Code, record.Purpose); err != nil {
				logger.Error(err)
			}
		}()
	}

	return record, nil
}

// Verify is a function that is used to consume a passcode, it reports true when
// this call won the verified transition on a matching record, false when no
// consumable record matched and errors.ErrStorageUnavailable when the store
// gave out so that the caller can tell a wrong code from an outage
func (s *OTP) Verify(ctx context.Context, identifier, code, purpose string) (bool, error) {
	if identifier == "" || len(code) != 6 {
		return false, errors.ErrBadRequest
	}
	if purpose == "" {
		purpose = enums.PurposeSignup
	}

	now := s.now()
	record, err := s.Store.FindConsumable(ctx, identifier, code, purpose, now)
	if err != nil {
		if errs.Is(err, errors.ErrOTPNotFound) {
			if err := s.Store.RecordFailure(ctx, identifier, purpose, now); err != nil {
				logger.Error(err)
			}
			return false, nil
		}

		logger.Error(err)
		return false, errors.ErrStorageUnavailable
	}

	won, err := s.Store.MarkVerified(ctx, *record.ID)
	if err != nil {
		logger.Error(err)
		return false, errors.ErrStorageUnavailable
	}

	return won, nil
}

// Cleanup is a function that is used to remove expired passcodes from the
// active store, repeated calls with nothing expired are no ops
func (s *OTP) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.Store.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Error(err)
		return 0, errors.ErrStorageUnavailable
	}

	return removed, nil
}

func (s *OTP) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *OTP) generate() string {
	if s.Generate != nil {
		return s.Generate()
	}
	return utils.GenerateOTPCode()
}
