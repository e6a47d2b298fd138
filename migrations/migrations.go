package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/Masterminds/semver/v3"
	"time"
)

// Dialect selects the DDL flavour for a database driver.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// CurrentSchemaVersion is the version recorded after all migrations ran.
const CurrentSchemaVersion = "1.1.0"

// Migration is one schema step. Statements run in order.
type Migration struct {
	Version    string
	Statements map[Dialect][]string
}

var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Statements: map[Dialect][]string{
			MySQL: {
				`CREATE TABLE IF NOT EXISTS products (
					id VARCHAR(36) PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL,
					price DECIMAL(12,2) NOT NULL,
					image VARCHAR(1024) NOT NULL,
					stock INT NOT NULL,
					category VARCHAR(100) NOT NULL,
					is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
					created_at DATETIME(3) NOT NULL,
					INDEX idx_products_category (category),
					INDEX idx_products_created_at (created_at)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS orders (
					id BIGINT AUTO_INCREMENT PRIMARY KEY,
					order_id VARCHAR(40) NOT NULL UNIQUE,
					customer_name VARCHAR(100) NOT NULL,
					customer_email VARCHAR(255) NOT NULL,
					customer_phone VARCHAR(20) NOT NULL,
					shipping_address VARCHAR(500) NOT NULL,
					apartment VARCHAR(255) NOT NULL DEFAULT '',
					city VARCHAR(100) NOT NULL,
					state VARCHAR(100) NOT NULL,
					pincode VARCHAR(10) NOT NULL,
					total_price DECIMAL(12,2) NOT NULL,
					total_items INT NOT NULL,
					status VARCHAR(20) NOT NULL,
					created_at DATETIME(3) NOT NULL,
					INDEX idx_orders_status (status),
					INDEX idx_orders_created_at (created_at)
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				`CREATE TABLE IF NOT EXISTS order_items (
					id BIGINT AUTO_INCREMENT PRIMARY KEY,
					order_id BIGINT NOT NULL,
					product_id VARCHAR(36) NOT NULL,
					product_name VARCHAR(255) NOT NULL,
					product_price DECIMAL(12,2) NOT NULL,
					product_image VARCHAR(1024) NOT NULL,
					quantity INT NOT NULL,
					subtotal DECIMAL(12,2) NOT NULL,
					INDEX idx_order_items_product (product_id),
					FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			},
			SQLite: {
				`CREATE TABLE IF NOT EXISTS products (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL,
					price DECIMAL(12,2) NOT NULL,
					image TEXT NOT NULL,
					stock INTEGER NOT NULL,
					category TEXT NOT NULL,
					is_deleted BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
				`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)`,
				`CREATE TABLE IF NOT EXISTS orders (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					order_id TEXT NOT NULL UNIQUE,
					customer_name TEXT NOT NULL,
					customer_email TEXT NOT NULL,
					customer_phone TEXT NOT NULL,
					shipping_address TEXT NOT NULL,
					apartment TEXT NOT NULL DEFAULT '',
					city TEXT NOT NULL,
					state TEXT NOT NULL,
					pincode TEXT NOT NULL,
					total_price DECIMAL(12,2) NOT NULL,
					total_items INTEGER NOT NULL,
					status TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
				`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
				`CREATE TABLE IF NOT EXISTS order_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					order_id INTEGER NOT NULL,
					product_id TEXT NOT NULL,
					product_name TEXT NOT NULL,
					product_price DECIMAL(12,2) NOT NULL,
					product_image TEXT NOT NULL,
					quantity INTEGER NOT NULL,
					subtotal DECIMAL(12,2) NOT NULL,
					FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
				`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`,
			},
		},
	},
	{
		// Storefront listing filters on is_deleted for every catalog read.
		Version: "1.1.0",
		Statements: map[Dialect][]string{
			MySQL:  {`CREATE INDEX idx_products_is_deleted ON products(is_deleted)`},
			SQLite: {`CREATE INDEX IF NOT EXISTS idx_products_is_deleted ON products(is_deleted)`},
		},
	},
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (
	version VARCHAR(20) PRIMARY KEY,
	applied_at DATETIME NOT NULL
)`

// AutoMigrate brings the schema up to CurrentSchemaVersion. Connecting to a
// database that is still starting up is retried once per second.
func AutoMigrate(ctx context.Context, db *sql.DB, dialect Dialect, retries int) error {
	var err error
	for i := 0; i <= retries; i++ {
		if i > 0 {
			time.Sleep(1 * time.Second)
		}
		if _, err = db.ExecContext(ctx, createVersionTable); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := appliedVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		v := semver.MustParse(m.Version)
		if current != nil && !v.GreaterThan(current) {
			continue
		}

		stmts, ok := m.Statements[dialect]
		if !ok {
			return fmt.Errorf("migration %s has no %s statements", m.Version, dialect)
		}
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s: %w", m.Version, err)
			}
		}

		_, err := db.ExecContext(ctx, `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`, m.Version, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		current = v
	}

	return nil
}

// SchemaVersion returns the highest applied version, or nil on a fresh database.
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	return appliedVersion(ctx, db)
}

func appliedVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer rows.Close()

	var latest *semver.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("bad schema version %q: %w", raw, err)
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	return latest, rows.Err()
}
