package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/cryptox"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidOrder = errors.New("invalid order")

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewOrder is the input of OrderService.Create.
type NewOrder struct {
	TotalMinor int64          `validate:"gt=0"`
	Currency   string         `validate:"required,len=3,alpha"`
	Billing    domain.Address `validate:"-"`
	Email      string         `validate:"omitempty,email"`
	Phone      string         `validate:"omitempty,max=32"`
}

// OrderView is an order with its audit trail.
type OrderView struct {
	Order        domain.Order
	Notes        []domain.OrderNote
	Webhooks     []domain.WebhookEvent
	SessionState domain.SessionState // empty when the order has no session
}

// OrderService is the minimal host order surface: create an order and read
// it back by id and key.
type OrderService struct {
	Store store.Store
	// Sessions defaults to Store.Sessions().
	Sessions store.Sessions
}

// Create stores a pending order with a fresh order key.
func (s *OrderService) Create(ctx context.Context, in NewOrder) (domain.Order, error) {
	log := slogx.FromContext(ctx)

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validate.Struct(in); err != nil {
		log.Debug("order validation failed", slog.Any("error", err))
		return domain.Order{}, ErrInvalidOrder
	}

	key, err := cryptox.GenerateOrderKey()
	if err != nil {
		log.Error("failed to generate order key", slog.Any("error", err))
		return domain.Order{}, err
	}

	order, err := s.Store.Orders().CreateOrder(ctx, domain.Order{
		Key:        key,
		Status:     domain.OrderPending,
		TotalMinor: in.TotalMinor,
		Currency:   in.Currency,
		Billing:    in.Billing,
		Email:      in.Email,
		Phone:      in.Phone,
	})
	if err != nil {
		log.Error("failed to create order", slog.Any("error", err))
		return domain.Order{}, err
	}

	log.Info("order created", slog.Int64("order_id", order.ID), slog.String("total", order.TotalAmount()))
	return order, nil
}

// View returns an order, its notes and its matched webhook events.
func (s *OrderService) View(ctx context.Context, orderID int64, key string) (OrderView, error) {
	order, err := loadOrder(ctx, s.Store, orderID, key)
	if err != nil {
		return OrderView{}, err
	}

	notes, err := s.Store.Orders().ListOrderNotes(ctx, order.ID)
	if err != nil {
		return OrderView{}, err
	}
	events, err := s.Store.WebhookEvents().ListWebhookEvents(ctx, order.ID)
	if err != nil {
		return OrderView{}, err
	}

	view := OrderView{Order: order, Notes: notes, Webhooks: events}

	sessions := s.Sessions
	if sessions == nil {
		sessions = s.Store.Sessions()
	}
	session, err := sessions.GetSession(ctx, order.ID)
	switch {
	case err == nil:
		view.SessionState = session.State
	case !errors.Is(err, store.ErrNotFound):
		return OrderView{}, err
	}

	return view, nil
}
