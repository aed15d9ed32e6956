package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/cryptox"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/idx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

// WebhookReceipt describes how a notification was handled.
type WebhookReceipt struct {
	EventID   string
	OrderID   int64 // 0 when no order matched
	EventType string
	Duplicate bool
}

// WebhookService records asynchronous processor notifications.
type WebhookService struct {
	Store store.Store
	IDs   *idx.Generator
	Now   func() time.Time
}

// Receive accepts a raw notification body. Anything that parses as a JSON
// object is accepted, whether or not it matches an order.
func (s *WebhookService) Receive(ctx context.Context, raw []byte) (WebhookReceipt, error) {
	log := slogx.FromContext(ctx)

	// 1. The body must be a JSON object.
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return WebhookReceipt{}, ErrInvalidPayload
	}
	body := cybersource.Body(payload)

	fingerprint := cryptox.FingerprintJSON(raw)

	receipt := WebhookReceipt{
		EventType: body.StringOr("unknown", "eventType"),
	}
	if s.IDs != nil {
		receipt.EventID = s.IDs.New().String()
	} else {
		receipt.EventID = idx.New().String()
	}

	// 2. Duplicate deliveries are acknowledged like any other.
	var err error
	receipt.Duplicate, err = s.Store.WebhookEvents().ExistsWebhookFingerprint(ctx, fingerprint)
	if err != nil {
		log.Error("failed to check webhook fingerprint", slog.Any("error", err))
		return WebhookReceipt{}, err
	}
	if receipt.Duplicate {
		log.Info("duplicate webhook delivery",
			slog.String("fingerprint", fingerprint),
			slog.String("event_type", receipt.EventType),
		)
	}

	// 3. Match the order through the client reference code.
	if id := ParseOrderReference(body.StringOr("", "clientReferenceInformation", "code")); id > 0 {
		_, err := s.Store.Orders().GetOrder(ctx, id)
		switch {
		case err == nil:
			receipt.OrderID = id
		case errors.Is(err, store.ErrNotFound):
			log.Info("webhook for unknown order", slog.Int64("order_id", id))
		default:
			log.Error("failed to fetch order", slog.Int64("order_id", id), slog.Any("error", err))
			return WebhookReceipt{}, err
		}
	}

	// 4. Record the event, and annotate the order when one matched.
	event := domain.WebhookEvent{
		ID:          receipt.EventID,
		OrderID:     receipt.OrderID,
		EventType:   receipt.EventType,
		Fingerprint: fingerprint,
		Payload:     raw,
		ReceivedAt:  nowFunc(s.Now),
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.WebhookEvents().CreateWebhookEvent(ctx, event); err != nil {
			return err
		}
		if receipt.OrderID == 0 {
			return nil
		}
		if err := tx.Orders().AddOrderNote(ctx, receipt.OrderID, "Cybersource webhook: "+receipt.EventType); err != nil {
			return err
		}
		return tx.OrderMeta().PutMeta(ctx, receipt.OrderID, domain.MetaLastWebhook, body.JSON())
	})
	if err != nil {
		log.Error("failed to record webhook", slog.String("event_id", receipt.EventID), slog.Any("error", err))
		return WebhookReceipt{}, err
	}

	log.Info("webhook received",
		slog.String("event_id", receipt.EventID),
		slog.String("event_type", receipt.EventType),
		slog.Int64("order_id", receipt.OrderID),
	)
	return receipt, nil
}
