package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database/entities"
)

// Config holds database connection settings.
type Config struct {
	Driver      string
	DatabaseURL string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// ConfigFromApp maps service configuration onto connection settings.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Driver:      cfg.DatabaseDriver,
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    gormlogger.Silent,
	}
}

func dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", config.DatabaseDriverPostgres:
		return postgres.Open(cfg.DatabaseURL), nil
	case config.DatabaseDriverMySQL:
		return mysql.Open(cfg.DatabaseURL), nil
	case config.DatabaseDriverSQLite:
		return sqlite.Open(cfg.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Connect opens the connection pool. Driver errors are translated so unique violations
// surface as gorm.ErrDuplicatedKey.
func Connect(cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		log.Error().
			Str("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Str("driver", cfg.Driver).
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	log.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return db, nil
}

// Migrate brings the schema up to date. Postgres runs the bundled SQL migrations; the
// other drivers derive the table from the entity.
func Migrate(db *gorm.DB, driver string, log zerolog.Logger) error {
	if driver == "" || driver == config.DatabaseDriverPostgres {
		return AutoMigrate(db, log)
	}
	if err := db.AutoMigrate(&entities.MediaFile{}); err != nil {
		return fmt.Errorf("auto migrate media_files: %w", err)
	}
	log.Info().Str("driver", driver).Msg("schema synchronised from entities")
	return nil
}

// NewFromConfig connects, applies migrations when enabled and enforces the configured
// correlation policy.
func NewFromConfig(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := Connect(ConfigFromApp(cfg), log)
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := Migrate(db, cfg.DatabaseDriver, log); err != nil {
			return nil, err
		}
	}
	if err := EnforceCorrelationPolicy(db, cfg.CorrelationPolicy, log); err != nil {
		return nil, err
	}
	return db, nil
}
