package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAutoMigrateFreshDatabase(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, AutoMigrate(ctx, db, SQLite, 0))

	v, err := SchemaVersion(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, CurrentSchemaVersion, v.String())

	for _, table := range []string{"products", "orders", "order_items"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestAutoMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, AutoMigrate(ctx, db, SQLite, 0))
	require.NoError(t, AutoMigrate(ctx, db, SQLite, 0))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&count))
	assert.Equal(t, len(AllMigrations), count)
}

func TestEveryMigrationCoversBothDialects(t *testing.T) {
	for _, m := range AllMigrations {
		assert.NotEmpty(t, m.Statements[MySQL], m.Version)
		assert.NotEmpty(t, m.Statements[SQLite], m.Version)
	}
}
