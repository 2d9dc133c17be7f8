package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/jumplog/internal/db"
)

// SQLStore is the SQLite Store. Inside WithTx every repository it hands
// out shares the same transaction.
type SQLStore struct {
	db *db.DB
	q  db.Querier
}

// NewSQLStore creates a Store over an open database
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database, q: database}
}

func (s *SQLStore) Jumps() JumpRepository        { return NewJumpRepo(s.q) }
func (s *SQLStore) Invoices() InvoiceRepository  { return NewInvoiceRepo(s.q) }
func (s *SQLStore) Rates() RateRepository        { return NewRateRepo(s.q) }
func (s *SQLStore) Registry() RegistryRepository { return NewRegistryRepo(s.q) }
func (s *SQLStore) Settings() SettingsRepository { return NewSettingsRepo(s.q) }
func (s *SQLStore) Events() EventRepository      { return NewEventRepo(s.q) }

// WithTx runs fn in a transaction. Calls nested inside an open
// transaction join it.
func (s *SQLStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&SQLStore{db: s.db, q: tx})
	})
}

// Reset deletes all user data, keeping the schema
func (s *SQLStore) Reset(ctx context.Context) error {
	tables := []string{
		"invoice_line_items",
		"invoice_events",
		"invoices",
		"jumps",
		"service_rates",
		"registry",
		"settings",
	}
	return s.WithTx(ctx, func(tx Store) error {
		q := tx.(*SQLStore).q
		for _, table := range tables {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
