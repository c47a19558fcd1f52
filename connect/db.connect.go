package connect

import (
	"fmt"
	"os"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/venbook/auth/config"
	"github.com/venbook/auth/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDatabase is a fucntion to initialize the connection with the postgres database,
// the error is returned instead of exiting so that the caller can fall back to the
// ephemeral store when the database is not reachable
func (c *Connector) InitDatabase(env *config.Env) error {
	db, err := gorm.Open(postgres.Open(env.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return err
	}

	if config.GetDevEnv(env) != config.Prod {
		db.Logger = gormLogger.Default.LogMode(gormLogger.Info)
	}

	c.DB = db
	return nil
}

// MigrateSchemaChanges is a fucntion that is used to migrate schema changes to the database
func (c *Connector) MigrateSchemaChanges(env *config.Env) {
	if config.GetDevEnv(env) == config.Prod {
		logger.Error(fmt.Errorf(" 🪨 Cannot migrate schema changes on production !"))
		os.Exit(0)
	}

	migrations := []interface{}{
		models.OtpRecord{},
	}
	if len(migrations) == 0 {
		logger.Error(fmt.Errorf(" ❌ No items to migrate ! "))
		os.Exit(0)
	}

	c.DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")

	err := c.DB.AutoMigrate(migrations...)
	if err != nil {
		logger.Errorf(err)
	}

	logger.Log("\n\n ✅ All schema changes have been migrated !")
}
