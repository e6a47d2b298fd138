// Package database opens the relational store backing the storefront.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
	"os"
	"storefront-service/migrations"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	Retries      int
	RetryDelay   time.Duration
}

// Dialect maps a driver name to its migration dialect.
func Dialect(driver string) (migrations.Dialect, error) {
	switch driver {
	case "mysql":
		return migrations.MySQL, nil
	case "sqlite":
		return migrations.SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// mysqlDSN turns on parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Open connects and pings, retrying while the server comes up.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if _, err := Dialect(opts.Driver); err != nil {
		return nil, err
	}
	dsn := opts.DSN
	if opts.Driver == "mysql" {
		var err error
		if dsn, err = mysqlDSN(opts.DSN); err != nil {
			return nil, err
		}
	}

	var db *sql.DB
	var err error
	for i := 0; i <= opts.Retries; i++ {
		db, err = sql.Open(opts.Driver, dsn)
		if err == nil {
			err = db.PingContext(ctx)
			if err == nil {
				break
			}
			_ = db.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to %s database", i+1, opts.Driver)
		time.Sleep(opts.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database after retries: %w", opts.Driver, err)
	}

	if opts.Driver == "sqlite" {
		// SQLite allows a single writer; one connection also keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	logger.Info().Msgf("Connected to %s database", opts.Driver)
	return db, nil
}

// OpenAndMigrate opens the database and applies pending migrations.
func OpenAndMigrate(ctx context.Context, opts Options) (*sql.DB, error) {
	db, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	dialect, _ := Dialect(opts.Driver)
	if err := migrations.AutoMigrate(ctx, db, dialect, 3); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory returns a migrated in-memory SQLite database.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	return OpenAndMigrate(ctx, Options{Driver: "sqlite", DSN: ":memory:"})
}
