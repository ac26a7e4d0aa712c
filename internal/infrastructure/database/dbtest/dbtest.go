// Package dbtest opens throwaway SQLite databases with the media schema applied.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database"
)

// Open returns a migrated SQLite database in t.TempDir with the given correlation policy.
func Open(t testing.TB, policy string) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.Config{
		Driver:      config.DatabaseDriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "media.db") + "?_busy_timeout=5000",
		MaxOpen:     1,
		LogLevel:    gormlogger.Silent,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := database.Migrate(db, config.DatabaseDriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.EnforceCorrelationPolicy(db, policy, zerolog.Nop()); err != nil {
		t.Fatalf("enforce policy: %v", err)
	}
	return db
}
