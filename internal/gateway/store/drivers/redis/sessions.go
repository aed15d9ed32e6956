// Package redis keeps authentication sessions in Redis so several gateway
// replicas can share in-flight challenges. Orders, notes and webhook audit
// stay in the SQL store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
)

const (
	defaultPrefix    = "cs3ds"
	defaultGrace     = time.Hour
	defaultRetention = 24 * time.Hour
)

// NewClient opens a Redis client. The connection is established lazily.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Sessions implements store.Sessions on Redis.
//
// Each session is a JSON string under <prefix>:session:<orderID>. Sessions
// with an expiry are also indexed in the sorted set <prefix>:sessions:expiry
// scored by expiry in unix millis so housekeeping can find them. Keys carry a
// TTL past their expiry so abandoned sessions eventually disappear even if
// housekeeping never runs.
type Sessions struct {
	client    goredis.UniversalClient
	prefix    string
	grace     time.Duration
	retention time.Duration
	now       func() time.Time
}

// Option customises Sessions.
type Option func(*Sessions)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Sessions) { s.prefix = prefix }
}

// WithGrace sets how long a session key outlives its expiry.
func WithGrace(d time.Duration) Option {
	return func(s *Sessions) { s.grace = d }
}

// WithRetention sets the TTL of sessions that carry no expiry.
func WithRetention(d time.Duration) Option {
	return func(s *Sessions) { s.retention = d }
}

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sessions) { s.now = now }
}

// NewSessions wraps a Redis client.
func NewSessions(client goredis.UniversalClient, opts ...Option) *Sessions {
	s := &Sessions{
		client:    client,
		prefix:    defaultPrefix,
		grace:     defaultGrace,
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Sessions = (*Sessions)(nil)

// Ping verifies the Redis connection.
func (s *Sessions) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Sessions) Close() error {
	return s.client.Close()
}

func (s *Sessions) sessionKey(orderID int64) string {
	return fmt.Sprintf("%s:session:%d", s.prefix, orderID)
}

func (s *Sessions) expiryKey() string {
	return s.prefix + ":sessions:expiry"
}

// record is the stored form of a domain.Session.
type record struct {
	ID                string `json:"id"`
	OrderID           int64  `json:"order_id"`
	State             string `json:"state"`
	SetupReferenceID  string `json:"setup_reference_id,omitempty"`
	AuthTransactionID string `json:"auth_transaction_id,omitempty"`
	ChallengeRequired bool   `json:"challenge_required"`
	StepUpURL         string `json:"step_up_url,omitempty"`
	AccessToken       string `json:"access_token,omitempty"`
	PAReq             string `json:"pareq,omitempty"`
	SealedCard        []byte `json:"sealed_card,omitempty"`
	ExpiresAt         int64  `json:"expires_at,omitempty"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

func toRecord(sess domain.Session) record {
	return record{
		ID:                sess.ID,
		OrderID:           sess.OrderID,
		State:             string(sess.State),
		SetupReferenceID:  sess.SetupReferenceID,
		AuthTransactionID: sess.AuthTransactionID,
		ChallengeRequired: sess.ChallengeRequired,
		StepUpURL:         sess.Challenge.StepUpURL,
		AccessToken:       sess.Challenge.AccessToken,
		PAReq:             sess.Challenge.PAReq,
		SealedCard:        sess.SealedCard,
		ExpiresAt:         toMillis(sess.ExpiresAt),
		CreatedAt:         toMillis(sess.CreatedAt),
		UpdatedAt:         toMillis(sess.UpdatedAt),
	}
}

func (r record) session() domain.Session {
	return domain.Session{
		ID:                r.ID,
		OrderID:           r.OrderID,
		State:             domain.SessionState(r.State),
		SetupReferenceID:  r.SetupReferenceID,
		AuthTransactionID: r.AuthTransactionID,
		ChallengeRequired: r.ChallengeRequired,
		Challenge: domain.ChallengePayload{
			StepUpURL:   r.StepUpURL,
			AccessToken: r.AccessToken,
			PAReq:       r.PAReq,
		},
		SealedCard: r.SealedCard,
		ExpiresAt:  fromMillis(r.ExpiresAt),
		CreatedAt:  fromMillis(r.CreatedAt),
		UpdatedAt:  fromMillis(r.UpdatedAt),
	}
}

func (s *Sessions) GetSession(ctx context.Context, orderID int64) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(orderID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Session{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return decode(raw)
}

// PutSession creates or replaces the order's session and its expiry index
// entry in one MULTI/EXEC.
func (s *Sessions) PutSession(ctx context.Context, sess domain.Session) error {
	now := s.now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	raw, err := json.Marshal(toRecord(sess))
	if err != nil {
		return err
	}

	ttl := s.retention
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(now) + s.grace
		if ttl <= 0 {
			ttl = s.grace
		}
	}

	member := strconv.FormatInt(sess.OrderID, 10)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(sess.OrderID), raw, ttl)
		if sess.ExpiresAt.IsZero() {
			pipe.ZRem(ctx, s.expiryKey(), member)
		} else {
			pipe.ZAdd(ctx, s.expiryKey(), goredis.Z{
				Score:  float64(toMillis(sess.ExpiresAt)),
				Member: member,
			})
		}
		return nil
	})
	return err
}

func (s *Sessions) DeleteSession(ctx context.Context, orderID int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(orderID))
		pipe.ZRem(ctx, s.expiryKey(), strconv.FormatInt(orderID, 10))
		return nil
	})
	return err
}

// ListExpiredSessions reads the expiry index. Index entries whose session key
// has already been evicted are removed and skipped.
func (s *Sessions) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.Session, error) {
	members, err := s.client.ZRangeByScore(ctx, s.expiryKey(), &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(toMillis(now), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis: bad expiry member %q: %w", m, err)
		}
		keys = append(keys, s.sessionKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var (
		sessions []domain.Session
		stale    []any
	)
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, members[i])
			continue
		}
		sess, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.expiryKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func decode(raw []byte) (domain.Session, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Session{}, fmt.Errorf("redis: decode session: %w", err)
	}
	return r.session(), nil
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
