package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
)

type ordersRepo struct {
	q *Queries
}

const orderColumns = `id, order_key, status, total_minor, currency,
	billing_first_name, billing_last_name, billing_address_1, billing_city,
	billing_state, billing_postcode, billing_country, email, phone,
	transaction_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                    domain.Order
		status               string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&o.ID, &o.Key, &status, &o.TotalMinor, &o.Currency,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Address1, &o.Billing.City,
		&o.Billing.State, &o.Billing.Postcode, &o.Billing.Country, &o.Email, &o.Phone,
		&o.TransactionID, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return o, nil
}

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	now := r.q.nowMillis()
	if o.Status == "" {
		o.Status = domain.OrderPending
	}

	row := r.q.queryRow(ctx, `INSERT INTO orders (
		order_key, status, total_minor, currency,
		billing_first_name, billing_last_name, billing_address_1, billing_city,
		billing_state, billing_postcode, billing_country, email, phone,
		transaction_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING `+orderColumns,
		o.Key, string(o.Status), o.TotalMinor, o.Currency,
		o.Billing.FirstName, o.Billing.LastName, o.Billing.Address1, o.Billing.City,
		o.Billing.State, o.Billing.Postcode, o.Billing.Country, o.Email, o.Phone,
		o.TransactionID, now, now,
	)
	return scanOrder(row)
}

func (r *ordersRepo) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	row := r.q.queryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	return o, nil
}

func (r *ordersRepo) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return expectOne(r.q.exec(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), r.q.nowMillis(), id,
	))
}

func (r *ordersRepo) SetTransactionID(ctx context.Context, id int64, transactionID string) error {
	return expectOne(r.q.exec(ctx,
		`UPDATE orders SET transaction_id = ?, updated_at = ? WHERE id = ?`,
		transactionID, r.q.nowMillis(), id,
	))
}

func (r *ordersRepo) AddOrderNote(ctx context.Context, orderID int64, body string) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO order_notes (order_id, body, created_at) VALUES (?, ?, ?)`,
		orderID, body, r.q.nowMillis(),
	)
	return err
}

func (r *ordersRepo) ListOrderNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	rows, err := r.q.query(ctx,
		`SELECT id, order_id, body, created_at FROM order_notes WHERE order_id = ? ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.OrderNote
	for rows.Next() {
		var (
			n         domain.OrderNote
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Body, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = fromMillis(createdAt)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
