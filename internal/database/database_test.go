package database

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSNEnablesParseTime(t *testing.T) {
	for _, dsn := range []string{
		"shop:secret@tcp(db:3306)/storefront",
		"shop:secret@tcp(db:3306)/storefront?parseTime=false&charset=utf8mb4",
		"shop:secret@tcp(db:3306)/storefront?parseTime=true",
	} {
		t.Run(dsn, func(t *testing.T) {
			got, err := mysqlDSN(dsn)
			require.NoError(t, err)

			cfg, err := mysql.ParseDSN(got)
			require.NoError(t, err)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, "storefront", cfg.DBName)
			assert.Equal(t, "db:3306", cfg.Addr)
		})
	}
}

func TestMySQLDSNRejectsGarbage(t *testing.T) {
	_, err := mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "postgres", DSN: "x"})
	assert.Error(t, err)
}
