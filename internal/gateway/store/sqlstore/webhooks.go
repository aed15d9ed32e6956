package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
)

type webhookEventsRepo struct {
	q *Queries
}

func (r *webhookEventsRepo) CreateWebhookEvent(ctx context.Context, e domain.WebhookEvent) error {
	receivedAt := toMillis(e.ReceivedAt)
	if receivedAt == 0 {
		receivedAt = r.q.nowMillis()
	}

	_, err := r.q.exec(ctx, `INSERT INTO webhook_events
		(id, order_id, event_type, fingerprint, payload, received_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, mapInt64Null(e.OrderID), e.EventType, e.Fingerprint, string(e.Payload), receivedAt,
	)
	return err
}

func (r *webhookEventsRepo) ExistsWebhookFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var n int64
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM webhook_events WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *webhookEventsRepo) DeleteWebhookEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM webhook_events WHERE received_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *webhookEventsRepo) ListWebhookEvents(ctx context.Context, orderID int64) ([]domain.WebhookEvent, error) {
	rows, err := r.q.query(ctx, `SELECT id, order_id, event_type, fingerprint, payload, received_at
		FROM webhook_events WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		var (
			e          domain.WebhookEvent
			orderID    sql.NullInt64
			payload    string
			receivedAt int64
		)
		if err := rows.Scan(&e.ID, &orderID, &e.EventType, &e.Fingerprint, &payload, &receivedAt); err != nil {
			return nil, err
		}
		e.OrderID = orderID.Int64
		e.Payload = []byte(payload)
		e.ReceivedAt = fromMillis(receivedAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
