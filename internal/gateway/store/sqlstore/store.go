package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/store"
)

// Migrator applies the driver's embedded migrations to db.
type Migrator func(db *sql.DB) error

// Store is the database/sql implementation of store.Store.
type Store struct {
	db      *sql.DB
	q       *Queries
	migrate Migrator
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at/updated_at columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.q.now = now }
}

// New wraps an open database. The driver packages call this after opening
// their connection.
func New(db *sql.DB, dialect Dialect, migrate Migrator, opts ...Option) *Store {
	s := &Store{
		db:      db,
		q:       newQueries(db, dialect, time.Now),
		migrate: migrate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle for drivers and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ApplyMigrations runs the driver's migrations.
func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: newQueries(tx, s.q.dialect, s.q.now)}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call after commit.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Orders() store.Orders               { return &ordersRepo{q: s.q} }
func (s *Store) OrderMeta() store.OrderMeta         { return &metaRepo{q: s.q} }
func (s *Store) Sessions() store.Sessions           { return &sessionsRepo{q: s.q} }
func (s *Store) WebhookEvents() store.WebhookEvents { return &webhookEventsRepo{q: s.q} }

type txStore struct {
	tx *sql.Tx
	q  *Queries
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

// Ping is a no-op for transactions. The connection is already established.
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Orders() store.Orders               { return &ordersRepo{q: t.q} }
func (t *txStore) OrderMeta() store.OrderMeta         { return &metaRepo{q: t.q} }
func (t *txStore) Sessions() store.Sessions           { return &sessionsRepo{q: t.q} }
func (t *txStore) WebhookEvents() store.WebhookEvents { return &webhookEventsRepo{q: t.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// expectOne maps an UPDATE/DELETE that touched no rows to store.ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func mapInt64Null(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
