// Package db opens gorm connections for the supported drivers.
package db

import (
	"fmt"

	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// sqlite allows a single writer; funnel everything through one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// MigrateNewStore creates the tables owned by this service.
func MigrateNewStore(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.MigrationState{}); err != nil {
		return fmt.Errorf("migrate new store schema: %w", err)
	}
	return nil
}

// MigrateLegacyStore is only used by tests and local setups; production legacy
// schemas are owned elsewhere.
func MigrateLegacyStore(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.LegacyUser{}); err != nil {
		return fmt.Errorf("migrate legacy store schema: %w", err)
	}
	return nil
}
