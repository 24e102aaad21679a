package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tradecli/internal/config"
)

// Driver names reported by DialectorFor
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open creates a database connection for cfg.URL and verifies it with HealthCheck.
// The URL scheme selects the driver: postgres:// or postgresql:// (an
// optional +driver suffix such as +psycopg2 is ignored) selects PostgreSQL,
// sqlite:// and file: select SQLite.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, driver, err := DialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetimeSeconds) * time.Second)

	if err := HealthCheck(ctx, db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "database connection established",
		slog.String("driver", driver),
		slog.String("target", redactURL(cfg.URL)))

	return db, nil
}

// DialectorFor maps a connection URL onto a gorm dialector
func DialectorFor(rawURL string) (gorm.Dialector, string, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		if strings.HasPrefix(rawURL, "file:") {
			return sqlite.Open(rawURL), DriverSQLite, nil
		}
		return nil, "", fmt.Errorf("unsupported database url %q: missing scheme", redactURL(rawURL))
	}

	// SQLAlchemy-style URLs carry the client library after a plus sign
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "postgres", "postgresql":
		return postgres.Open(base + "://" + rest), DriverPostgres, nil
	case "sqlite":
		return sqlite.Open(sqlitePath(rest)), DriverSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// sqlitePath follows the sqlite:///relative.db and sqlite:////absolute.db
// convention; an empty path opens an in-memory database.
func sqlitePath(rest string) string {
	if rest == "" || rest == "/" {
		return ":memory:"
	}
	return strings.TrimPrefix(rest, "/")
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	slog.Info("database connection closed")
	return nil
}

// HealthCheck performs a health check on the database connection
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// redactURL hides the password of a connection URL for logging. URLs that do
// not parse are reduced to their scheme.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		scheme, _, ok := strings.Cut(rawURL, "://")
		if !ok {
			return "***"
		}
		return scheme + "://***"
	}
	return u.Redacted()
}
