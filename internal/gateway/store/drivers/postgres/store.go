// Package postgres is the production store driver built on lib/pq.
package postgres

import (
	"database/sql"

	"github.com/aussiebroadwan/threeds/internal/gateway/store/sqlstore"
	_ "github.com/lib/pq"
)

// NewStore opens a postgres database from a lib/pq DSN.
func NewStore(dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db, opts...), nil
}

// NewStoreFromDB wraps an already open handle.
func NewStoreFromDB(db *sql.DB, opts ...sqlstore.Option) *sqlstore.Store {
	return sqlstore.New(db, sqlstore.Dollar, applyMigrations, opts...)
}
