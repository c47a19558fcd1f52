package storage

import (
	"github.com/VinukaThejana/go-utils/logger"
	"gorm.io/gorm"
)

// Select is a function that is used to choose the passcode store once at
// startup, when no database connection could be established the in memory
// store is returned and the process sticks with it for its whole lifetime
func Select(db *gorm.DB) Store {
	if db == nil {
		logger.Log("No database connection, passcodes are kept in memory for this process")
		return NewEphemeral()
	}

	return NewDurable(db)
}
