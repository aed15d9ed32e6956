// Package sqlstore implements the store repositories once for every
// database/sql driver. Queries are written with ? placeholders and rebound
// for the driver's dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect describes placeholder syntax.
type Dialect int

const (
	// Question keeps ? placeholders (sqlite).
	Question Dialect = iota
	// Dollar rewrites to $1, $2, ... (postgres).
	Dollar
)

// Rebind rewrites ? placeholders for the dialect. Queries in this package
// never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Dollar {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Queries runs rebound statements against a DBTX.
type Queries struct {
	db      DBTX
	dialect Dialect
	now     func() time.Time
}

func newQueries(db DBTX, d Dialect, now func() time.Time) *Queries {
	return &Queries{db: db, dialect: d, now: now}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *Queries) nowMillis() int64 {
	return q.now().UTC().UnixMilli()
}
