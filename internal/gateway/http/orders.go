package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/pkg/gatewaysdk"
	"github.com/aussiebroadwan/threeds/pkg/httpx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

type OrdersHandler struct {
	OrderService *service.OrderService
}

// HandleCreate godoc
//
//	@Summary		Create Order
//	@Description	Create a pending order. The returned key is required by every buyer-facing endpoint of the order.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatewaysdk.CreateOrderRequest	true	"Order total, currency and billing contact"
//	@Success		201		{object}	gatewaysdk.CreateOrderResponse	"id, key, status, total"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	gatewaysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/orders [post].
func (h *OrdersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req gatewaysdk.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gatewaysdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	order, err := h.OrderService.Create(ctx, service.NewOrder{
		TotalMinor: req.TotalMinor,
		Currency:   req.Currency,
		Billing: domain.Address{
			FirstName: req.Billing.FirstName,
			LastName:  req.Billing.LastName,
			Address1:  req.Billing.Address1,
			City:      req.Billing.City,
			State:     req.Billing.State,
			Postcode:  req.Billing.Postcode,
			Country:   req.Billing.Country,
		},
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrder) {
			gatewaysdk.ErrInvalidRequest.WithDescription("total_minor must be positive and currency a 3-letter code").WriteError(w)
			return
		}
		log.Error("failed to create order", "err", err)
		gatewaysdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatewaysdk.CreateOrderResponse{
		ID:     order.ID,
		Key:    order.Key,
		Status: string(order.Status),
		Total:  order.TotalAmount(),
	})
}

// HandleGet godoc
//
//	@Summary		Get Order
//	@Description	Order status page: status, transaction id, notes and matched webhook events
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		int							true	"Order id"
//	@Param			key	query		string						true	"Order key"
//	@Success		200	{object}	gatewaysdk.OrderResponse	"order view"
//	@Failure		400	{object}	gatewaysdk.ErrorResponse	"invalid_order"
//	@Router			/v1/orders/{id} [get].
func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := service.ParseOrderReference(r.PathValue("id"))
	if id == 0 {
		gatewaysdk.ErrInvalidOrder.WriteError(w)
		return
	}

	view, err := h.OrderService.View(ctx, id, r.URL.Query().Get("key"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	resp := gatewaysdk.OrderResponse{
		ID:            view.Order.ID,
		Status:        string(view.Order.Status),
		Total:         view.Order.TotalAmount(),
		Currency:      view.Order.Currency,
		TransactionID: view.Order.TransactionID,
		SessionState:  string(view.SessionState),
		Notes:         make([]gatewaysdk.OrderNote, 0, len(view.Notes)),
		Webhooks:      make([]gatewaysdk.WebhookEvent, 0, len(view.Webhooks)),
		CreatedAt:     view.Order.CreatedAt,
		UpdatedAt:     view.Order.UpdatedAt,
	}
	for _, n := range view.Notes {
		resp.Notes = append(resp.Notes, gatewaysdk.OrderNote{Body: n.Body, CreatedAt: n.CreatedAt})
	}
	for _, e := range view.Webhooks {
		resp.Webhooks = append(resp.Webhooks, gatewaysdk.WebhookEvent{ID: e.ID, EventType: e.EventType, ReceivedAt: e.ReceivedAt})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// writeOrderError maps order lookup failures. Unknown orders and wrong keys
// look the same to the caller.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrInvalidOrderKey):
		gatewaysdk.ErrInvalidOrder.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("order request failed", "err", err)
		gatewaysdk.ErrServerError.WriteError(w)
	}
}
