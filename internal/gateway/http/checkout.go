package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/gatewaysdk"
	"github.com/aussiebroadwan/threeds/pkg/httpx"
)

type CheckoutHandler struct {
	CheckoutService *service.CheckoutService
}

// ServeHTTP godoc
//
//	@Summary		Checkout
//	@Description	Start a 3-D Secure payment attempt for an order.
//	@Description	The result either captures straight away or redirects the buyer to the challenge page.
//	@Description	Processor failures come back as result "failure" with a message; the order is marked failed.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Order id"
//	@Param			key		query		string						true	"Order key"
//	@Param			request	body		gatewaysdk.CheckoutRequest	true	"Card fields"
//	@Success		200		{object}	gatewaysdk.CheckoutResponse	"result, redirect, message"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse	"invalid_order, invalid_request"
//	@Failure		409		{object}	gatewaysdk.ErrorResponse	"order_paid"
//	@Failure		500		{object}	gatewaysdk.ErrorResponse	"server_error"
//	@Router			/v1/orders/{id}/checkout [post].
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := service.ParseOrderReference(r.PathValue("id"))
	if id == 0 {
		gatewaysdk.ErrInvalidOrder.WriteError(w)
		return
	}

	var req gatewaysdk.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gatewaysdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	card := cybersource.Card{
		Number:       req.Number,
		ExpMonth:     req.ExpMonth,
		ExpYear:      req.ExpYear,
		SecurityCode: req.CVC,
	}

	res, err := h.CheckoutService.Checkout(ctx, id, r.URL.Query().Get("key"), card)
	switch {
	case err == nil,
		errors.Is(err, service.ErrInvalidCard),
		errors.Is(err, service.ErrNotConfigured):
		// Buyer-facing outcomes, reported in the result.
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		gatewaysdk.ErrOrderPaid.WriteError(w)
		return
	default:
		writeOrderError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatewaysdk.CheckoutResponse{
		Result:   string(res.Result),
		Redirect: res.Redirect,
		Message:  res.Message,
	})
}
