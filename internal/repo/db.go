// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and PostgreSQL, tracing instrumentation, and schema
// migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// Supported values for the driver argument of Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the configured database. For sqlite, dsn is a file path;
// for postgres it is a connection URL. Every handle is instrumented with the
// GORM OpenTelemetry plugin.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// sqlitePragmas run on every SQLite handle: WAL with NORMAL sync for
// concurrent readers, enforced foreign keys for the like and album cascades,
// and a busy timeout so writers queue instead of failing.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// OpenSQLite opens (or creates) the SQLite database at path. The parent
// directory must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(log.Logger))
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := configurePool(db, 10); err != nil {
		return nil, err
	}
	return db, instrument(db)
}

// OpenPostgres connects to PostgreSQL using dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres")
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log.Logger))
	if err != nil {
		return nil, err
	}
	if err := configurePool(db, 25); err != nil {
		return nil, err
	}
	return db, instrument(db)
}

// gormLogWriter routes GORM's slow-query and error lines into zerolog.
type gormLogWriter struct{ log zerolog.Logger }

func (w gormLogWriter) Printf(format string, args ...any) {
	w.log.Warn().Msgf(format, args...)
}

// gormConfig logs slow statements and real errors only. Missing rows are an
// expected outcome of lookups and are not logged.
func gormConfig(out zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(gormLogWriter{out.With().Str("component", "gorm").Logger()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func configurePool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(maxOpen, 10))
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return nil
}

func instrument(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics(), tracing.WithoutQueryVariables()))
}

// Models lists every persisted type, parents before children.
func Models() []any {
	return []any{
		&domain.Sermon{},
		&domain.SermonLike{},
		&domain.Event{},
		&domain.Ministry{},
		&domain.GalleryAlbum{},
		&domain.GalleryImage{},
		&domain.About{},
		&domain.AboutSection{},
		&domain.Leader{},
		&domain.HeroSettings{},
		&domain.ContactMessage{},
		&domain.Idempotency{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
