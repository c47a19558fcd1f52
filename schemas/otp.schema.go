package schemas

import (
	"time"

	"github.com/venbook/auth/models"
)

// Res is a schema that contains the default response
type Res struct {
	Status string `json:"status"`
}

// OtpIssued is a schema that contians the details returned to the caller after
// a passcode has been issued, the code itself is never returned
type OtpIssued struct {
	Status    string    `json:"status"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CleanupResult contains the amount of expired passcodes that were removed
type CleanupResult struct {
	Status  string `json:"status"`
	Removed int64  `json:"removed"`
}

// FilterOtpRecord is a function that is used to filter the otp record to a caller
// freindly format
func FilterOtpRecord(record models.OtpRecord) OtpIssued {
	issued := OtpIssued{
		ExpiresAt: record.ExpiresAt,
	}
	if record.CreatedAt != nil {
		issued.IssuedAt = *record.CreatedAt
	}

	return issued
}
