package models

import (
	"time"

	"github.com/google/uuid"
)

// OtpRecord represents a one time passcode issued against an email address or a phone number
type OtpRecord struct {
	ID          *uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key"`
	CreatedAt   *time.Time `gorm:"not null;default:now()"`
	Email       string     `gorm:"type:varchar(255);index;default:null"`
	Phone       string     `gorm:"type:varchar(20);index;default:null"`
	Code        string     `gorm:"type:varchar(6);not null"`
	Purpose     string     `gorm:"type:varchar(50);not null;default:'signup'"`
	Verified    bool       `gorm:"not null;default:false"`
	Attempts    int        `gorm:"not null;default:0"`
	MaxAttempts int        `gorm:"not null;default:3"`
	ExpiresAt   time.Time  `gorm:"not null;index"`
}

// Identifier returns the subject the passcode was issued against
func (o *OtpRecord) Identifier() string {
	if o.Email != "" {
		return o.Email
	}
	return o.Phone
}

// Matches is a function that is used to check wether the record can satisfy the
// given identifier, code and purpose at the given time
func (o *OtpRecord) Matches(identifier, code, purpose string, now time.Time) bool {
	if o.Email != identifier && o.Phone != identifier {
		return false
	}
	if o.Code != code || o.Purpose != purpose {
		return false
	}
	if o.Verified || o.Attempts >= o.MaxAttempts {
		return false
	}
	return now.Before(o.ExpiresAt)
}
