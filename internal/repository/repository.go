package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"os"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	// ErrNotFound is returned when a requested row doesn't exist.
	ErrNotFound = errors.New("not found")
)

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store hands out repositories bound to the database or to a transaction.
type Store struct {
	db       *sql.DB
	Products *ProductRepository
	Orders   *OrderRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Products: &ProductRepository{q: db},
		Orders:   &OrderRepository{q: db},
	}
}

// Tx exposes the repositories of one open transaction.
type Tx struct {
	Products *ProductRepository
	Orders   *OrderRepository
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on any error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error().Err(rbErr).Msg("Error rolling back transaction")
			}
		}
	}()

	if err = fn(&Tx{Products: &ProductRepository{q: sqlTx}, Orders: &OrderRepository{q: sqlTx}}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
