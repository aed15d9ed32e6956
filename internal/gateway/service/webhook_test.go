package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/stretchr/testify/require"
)

func TestWebhookReceive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("matched order is annotated", func(t *testing.T) {
		t.Parallel()
		st := newTestStore(t)
		order := createOrder(t, st)
		svc := &WebhookService{Store: st}

		raw := []byte(`{"clientReferenceInformation":{"code":"` + order.Reference() + `"},"eventType":"PAYMENT.UPDATED"}`)
		receipt, err := svc.Receive(ctx, raw)
		require.NoError(t, err)
		require.Equal(t, order.ID, receipt.OrderID)
		require.Equal(t, "PAYMENT.UPDATED", receipt.EventType)
		require.False(t, receipt.Duplicate)
		require.NotEmpty(t, receipt.EventID)

		notes, err := st.Orders().ListOrderNotes(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.Equal(t, "Cybersource webhook: PAYMENT.UPDATED", notes[0].Body)

		last, err := st.OrderMeta().GetMeta(ctx, order.ID, domain.MetaLastWebhook)
		require.NoError(t, err)
		require.JSONEq(t, string(raw), string(last))

		events, err := st.WebhookEvents().ListWebhookEvents(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, receipt.EventID, events[0].ID)
	})

	t.Run("missing event type", func(t *testing.T) {
		t.Parallel()
		st := newTestStore(t)
		order := createOrder(t, st)

		_, err := (&WebhookService{Store: st}).Receive(ctx, []byte(`{"clientReferenceInformation":{"code":"`+order.Reference()+`"}}`))
		require.NoError(t, err)

		notes, err := st.Orders().ListOrderNotes(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, "Cybersource webhook: unknown", notes[0].Body)
	})

	t.Run("unknown order is still accepted", func(t *testing.T) {
		t.Parallel()
		st := newTestStore(t)

		receipt, err := (&WebhookService{Store: st}).Receive(ctx, []byte(`{"clientReferenceInformation":{"code":"9999"},"eventType":"X"}`))
		require.NoError(t, err)
		require.Zero(t, receipt.OrderID)
	})

	t.Run("documents jcs cannot canonicalise", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			raw       string
			eventType string
		}{
			{"duplicate key", `{"eventType":"A","eventType":"B"}`, "B"},
			{"lone surrogate", `{"eventType":"\ud800"}`, "\uFFFD"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				st := newTestStore(t)
				svc := &WebhookService{Store: st}

				receipt, err := svc.Receive(ctx, []byte(tt.raw))
				require.NoError(t, err)
				require.Equal(t, tt.eventType, receipt.EventType)
				require.False(t, receipt.Duplicate)

				again, err := svc.Receive(ctx, []byte(tt.raw))
				require.NoError(t, err)
				require.True(t, again.Duplicate)
			})
		}
	})

	t.Run("duplicate delivery", func(t *testing.T) {
		t.Parallel()
		st := newTestStore(t)
		svc := &WebhookService{Store: st}

		_, err := svc.Receive(ctx, []byte(`{"eventType":"A","clientReferenceInformation":{"code":"1"}}`))
		require.NoError(t, err)

		// Same document, different key order and spacing.
		receipt, err := svc.Receive(ctx, []byte(`{ "clientReferenceInformation": {"code": "1"}, "eventType": "A" }`))
		require.NoError(t, err)
		require.True(t, receipt.Duplicate)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		t.Parallel()
		svc := &WebhookService{Store: newTestStore(t)}

		for _, raw := range []string{``, `not json`, `[1,2]`, `null`, `"str"`, `{"a":`} {
			_, err := svc.Receive(ctx, []byte(raw))
			require.ErrorIs(t, err, ErrInvalidPayload, "payload %q", raw)
		}
	})
}

func TestParseOrderReference(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"42":   42,
		" 42 ": 42,
		"0":    0,
		"-3":   0,
		"":     0,
		"abc":  0,
		"4.2":  0,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseOrderReference(in), in)
	}
}
