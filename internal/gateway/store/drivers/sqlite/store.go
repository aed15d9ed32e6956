package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/threeds/internal/gateway/store/sqlstore"
	_ "modernc.org/sqlite"
)

// NewStore opens a sqlite database. In-memory databases are pinned to a
// single connection so every query sees the same database.
func NewStore(dsn string, opts ...sqlstore.Option) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, sqlstore.Question, applyMigrations, opts...), nil
}
