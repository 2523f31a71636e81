package db

import (
	"fmt"                          // Error wrapping
	"poker_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"   // SQLite driver for GORM
	"gorm.io/gorm"            // GORM ORM library
)

// Open connects to the store behind the given driver name
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	// TranslateError maps unique violations to gorm.ErrDuplicatedKey for every dialect
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the tables, foreign keys and indexes
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Session{})
}

// Migrate performs automatic migration for the database schema
func Migrate(driver, dsn string) error {
	db, err := Open(driver, dsn) // Open a connection to the database
	if err != nil {
		return err
	}
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.WithField("driver", driver).Info("Migration completed.") // Log successful migration
	return nil
}
