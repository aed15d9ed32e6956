package sqlstore

import (
	"context"
)

type metaRepo struct {
	q *Queries
}

func (r *metaRepo) PutMeta(ctx context.Context, orderID int64, key string, value []byte) error {
	_, err := r.q.exec(ctx, `INSERT INTO order_meta (order_id, meta_key, meta_value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (order_id, meta_key)
		DO UPDATE SET meta_value = excluded.meta_value, updated_at = excluded.updated_at`,
		orderID, key, string(value), r.q.nowMillis(),
	)
	return err
}

func (r *metaRepo) GetMeta(ctx context.Context, orderID int64, key string) ([]byte, error) {
	var value string
	err := r.q.queryRow(ctx,
		`SELECT meta_value FROM order_meta WHERE order_id = ? AND meta_key = ?`,
		orderID, key,
	).Scan(&value)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return []byte(value), nil
}

func (r *metaRepo) DeleteMeta(ctx context.Context, orderID int64, key string) error {
	_, err := r.q.exec(ctx,
		`DELETE FROM order_meta WHERE order_id = ? AND meta_key = ?`,
		orderID, key,
	)
	return err
}
