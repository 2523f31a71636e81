// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"testing"

	"poker_ledger/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New returns a migrated, private in-memory database and its close func.
// A fresh name per call keeps tests and property iterations apart.
func New() (*gorm.DB, func(), error) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}
	return gdb, func() { _ = sqlDB.Close() }, nil
}

// Open is New for a *testing.T, closing the database on cleanup.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb, closeFn, err := New()
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(closeFn)
	return gdb
}
