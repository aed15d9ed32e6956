package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
)

type sessionsRepo struct {
	q *Queries
}

const sessionColumns = `id, order_id, state, setup_reference_id, auth_transaction_id,
	challenge_required, step_up_url, access_token, pareq, sealed_card,
	expires_at, created_at, updated_at`

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s                               domain.Session
		state                           string
		expiresAt, createdAt, updatedAt int64
	)
	err := row.Scan(
		&s.ID, &s.OrderID, &state, &s.SetupReferenceID, &s.AuthTransactionID,
		&s.ChallengeRequired, &s.Challenge.StepUpURL, &s.Challenge.AccessToken, &s.Challenge.PAReq, &s.SealedCard,
		&expiresAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	s.State = domain.SessionState(state)
	s.ExpiresAt = fromMillis(expiresAt)
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return s, nil
}

func (r *sessionsRepo) GetSession(ctx context.Context, orderID int64) (domain.Session, error) {
	row := r.q.queryRow(ctx, `SELECT `+sessionColumns+` FROM auth_sessions WHERE order_id = ?`, orderID)
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) PutSession(ctx context.Context, s domain.Session) error {
	now := r.q.nowMillis()
	createdAt := toMillis(s.CreatedAt)
	if createdAt == 0 {
		createdAt = now
	}

	_, err := r.q.exec(ctx, `INSERT INTO auth_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			id = excluded.id,
			state = excluded.state,
			setup_reference_id = excluded.setup_reference_id,
			auth_transaction_id = excluded.auth_transaction_id,
			challenge_required = excluded.challenge_required,
			step_up_url = excluded.step_up_url,
			access_token = excluded.access_token,
			pareq = excluded.pareq,
			sealed_card = excluded.sealed_card,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		s.ID, s.OrderID, string(s.State), s.SetupReferenceID, s.AuthTransactionID,
		s.ChallengeRequired, s.Challenge.StepUpURL, s.Challenge.AccessToken, s.Challenge.PAReq, s.SealedCard,
		toMillis(s.ExpiresAt), createdAt, now,
	)
	return err
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, orderID int64) error {
	_, err := r.q.exec(ctx, `DELETE FROM auth_sessions WHERE order_id = ?`, orderID)
	return err
}

func (r *sessionsRepo) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.Session, error) {
	rows, err := r.q.query(ctx, `SELECT `+sessionColumns+` FROM auth_sessions
		WHERE expires_at > 0 AND expires_at <= ?
		ORDER BY expires_at
		LIMIT ?`,
		toMillis(now), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
