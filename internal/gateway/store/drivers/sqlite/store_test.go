package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/sqlstore"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:", sqlstore.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func createOrder(t *testing.T, st store.Store) domain.Order {
	t.Helper()

	o, err := st.Orders().CreateOrder(context.Background(), domain.Order{
		Key:        "wc_order_abc",
		TotalMinor: 1999,
		Currency:   "USD",
		Billing:    domain.Address{FirstName: "Ada", LastName: "Lovelace", Country: "GB"},
		Email:      "ada@example.com",
	})
	require.NoError(t, err)
	return o
}

func TestOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	o := createOrder(t, st)
	require.NotZero(t, o.ID)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Equal(t, testNow, o.CreatedAt)

	got, err := st.Orders().GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, o, got)

	require.NoError(t, st.Orders().UpdateOrderStatus(ctx, o.ID, domain.OrderOnHold))
	require.NoError(t, st.Orders().SetTransactionID(ctx, o.ID, "tx-1"))

	got, err = st.Orders().GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderOnHold, got.Status)
	require.Equal(t, "tx-1", got.TransactionID)

	_, err = st.Orders().GetOrder(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, st.Orders().UpdateOrderStatus(ctx, 9999, domain.OrderFailed), store.ErrNotFound)
}

func TestOrderNotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	o := createOrder(t, st)

	require.NoError(t, st.Orders().AddOrderNote(ctx, o.ID, "first"))
	require.NoError(t, st.Orders().AddOrderNote(ctx, o.ID, "second"))

	notes, err := st.Orders().ListOrderNotes(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "first", notes[0].Body)
	require.Equal(t, "second", notes[1].Body)

	require.Error(t, st.Orders().AddOrderNote(ctx, 9999, "orphan"), "foreign keys are enforced")
}

func TestOrderMeta(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	o := createOrder(t, st)

	_, err := st.OrderMeta().GetMeta(ctx, o.ID, domain.MetaAuthSetup)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.OrderMeta().PutMeta(ctx, o.ID, domain.MetaAuthSetup, []byte(`{"a":1}`)))
	require.NoError(t, st.OrderMeta().PutMeta(ctx, o.ID, domain.MetaAuthSetup, []byte(`{"a":2}`)))

	v, err := st.OrderMeta().GetMeta(ctx, o.ID, domain.MetaAuthSetup)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2}`, string(v))

	require.NoError(t, st.OrderMeta().DeleteMeta(ctx, o.ID, domain.MetaAuthSetup))
	_, err = st.OrderMeta().GetMeta(ctx, o.ID, domain.MetaAuthSetup)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	o := createOrder(t, st)

	_, err := st.Sessions().GetSession(ctx, o.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	s := domain.NewSession("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", o.ID, testNow)
	s.State = domain.StateChallengeRequired
	s.SetupReferenceID = "ref-1"
	s.AuthTransactionID = "tx-1"
	s.ChallengeRequired = true
	s.Challenge = domain.ChallengePayload{StepUpURL: "https://issuer/step", AccessToken: "tok"}
	s.SealedCard = []byte{0x01, 0x02, 0x03}
	s.ExpiresAt = testNow.Add(30 * time.Minute)
	require.NoError(t, st.Sessions().PutSession(ctx, s))

	got, err := st.Sessions().GetSession(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, s, got)

	// A new attempt replaces the session.
	replacement := domain.NewSession("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZW", o.ID, testNow)
	require.NoError(t, st.Sessions().PutSession(ctx, replacement))

	got, err = st.Sessions().GetSession(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, replacement.ID, got.ID)
	require.Equal(t, domain.StateInit, got.State)
	require.Nil(t, got.SealedCard)
	require.True(t, got.ExpiresAt.IsZero())
	require.False(t, got.ChallengeRequired)

	require.NoError(t, st.Sessions().DeleteSession(ctx, o.ID))
	_, err = st.Sessions().GetSession(ctx, o.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListExpiredSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	expiries := []time.Duration{-2 * time.Minute, -time.Minute, time.Minute, 0}
	for i, d := range expiries {
		o := createOrder(t, st)
		s := domain.NewSession("attempt-"+string(rune('a'+i)), o.ID, testNow)
		if d != 0 {
			s.ExpiresAt = testNow.Add(d)
		}
		require.NoError(t, st.Sessions().PutSession(ctx, s))
	}

	expired, err := st.Sessions().ListExpiredSessions(ctx, testNow, 10)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	require.Equal(t, "attempt-a", expired[0].ID, "soonest expiry first")
	require.Equal(t, "attempt-b", expired[1].ID)

	limited, err := st.Sessions().ListExpiredSessions(ctx, testNow, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestWebhookEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	o := createOrder(t, st)

	ok, err := st.WebhookEvents().ExistsWebhookFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.WebhookEvents().CreateWebhookEvent(ctx, domain.WebhookEvent{
		ID:          "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZA",
		OrderID:     o.ID,
		EventType:   "PAYMENT.UPDATED",
		Fingerprint: "fp-1",
		Payload:     []byte(`{"eventType":"PAYMENT.UPDATED"}`),
		ReceivedAt:  testNow.Add(-48 * time.Hour),
	}))
	require.NoError(t, st.WebhookEvents().CreateWebhookEvent(ctx, domain.WebhookEvent{
		ID:          "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZB",
		EventType:   "unknown",
		Fingerprint: "fp-2",
		Payload:     []byte(`{}`),
	}))

	ok, err = st.WebhookEvents().ExistsWebhookFingerprint(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)

	events, err := st.WebhookEvents().ListWebhookEvents(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "PAYMENT.UPDATED", events[0].EventType)
	require.Equal(t, o.ID, events[0].OrderID)

	n, err := st.WebhookEvents().DeleteWebhookEventsBefore(ctx, testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	ok, err = st.WebhookEvents().ExistsWebhookFingerprint(ctx, "fp-2")
	require.NoError(t, err)
	require.True(t, ok, "recent events survive retention")
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	o := createOrder(t, st)

	t.Run("commits on success", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Orders().AddOrderNote(ctx, o.ID, "in tx"); err != nil {
				return err
			}
			return tx.OrderMeta().PutMeta(ctx, o.ID, domain.MetaLastWebhook, []byte(`{}`))
		})
		require.NoError(t, err)

		notes, err := st.Orders().ListOrderNotes(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Orders().AddOrderNote(ctx, o.ID, "discarded"); err != nil {
				return err
			}
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		notes, err := st.Orders().ListOrderNotes(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
	})
}
