package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement it through sqlstore. Sub-repositories are exposed as methods so a
// transaction scope hands out the same repos bound to the transaction.
type Store interface {
	Orders() Orders
	OrderMeta() OrderMeta
	Sessions() Sessions
	WebhookEvents() WebhookEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Orders interface {
	// CreateOrder inserts an order and returns it with its assigned id.
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)

	GetOrder(ctx context.Context, id int64) (domain.Order, error)

	// UpdateOrderStatus sets the status and bumps updated_at.
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	SetTransactionID(ctx context.Context, id int64, transactionID string) error

	AddOrderNote(ctx context.Context, orderID int64, body string) error

	// ListOrderNotes returns notes oldest first.
	ListOrderNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error)
}

// OrderMeta is the order-scoped key/value store. Values are JSON documents.
type OrderMeta interface {
	PutMeta(ctx context.Context, orderID int64, key string, value []byte) error
	GetMeta(ctx context.Context, orderID int64, key string) ([]byte, error)
	DeleteMeta(ctx context.Context, orderID int64, key string) error
}

// Sessions holds the single authentication session of each order. The sql
// drivers and the redis driver both implement it.
type Sessions interface {
	GetSession(ctx context.Context, orderID int64) (domain.Session, error)

	// PutSession creates or replaces the order's session.
	PutSession(ctx context.Context, s domain.Session) error

	DeleteSession(ctx context.Context, orderID int64) error

	// ListExpiredSessions returns up to limit sessions whose expiry is at or
	// before now, soonest first.
	ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.Session, error)
}

type WebhookEvents interface {
	CreateWebhookEvent(ctx context.Context, e domain.WebhookEvent) error

	// ExistsWebhookFingerprint reports whether a payload with the same
	// canonical fingerprint was already recorded.
	ExistsWebhookFingerprint(ctx context.Context, fingerprint string) (bool, error)

	// ListWebhookEvents returns the events matched to an order, oldest first.
	ListWebhookEvents(ctx context.Context, orderID int64) ([]domain.WebhookEvent, error)

	// DeleteWebhookEventsBefore is housekeeping; it returns the number removed.
	DeleteWebhookEventsBefore(ctx context.Context, before time.Time) (int64, error)
}
