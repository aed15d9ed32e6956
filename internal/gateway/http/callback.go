package http

import (
	"net/http"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/gatewaysdk"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

type CallbackHandler struct {
	CheckoutService *service.CheckoutService
}

// ServeHTTP godoc
//
//	@Summary		Issuer Challenge Callback
//	@Description	Return URL the issuer posts the challenge result to. The order is re-identified from the order_id and key query parameters;
//	@Description	a key mismatch is rejected before any processor call. The buyer is redirected to the order page or back to checkout.
//	@Tags			Checkout
//	@Accept			x-www-form-urlencoded
//	@Param			order_id	query		int							true	"Order id"
//	@Param			key			query		string						true	"Order key"
//	@Param			cres		formData	string						false	"3DS 2.x challenge result"
//	@Param			PaRes		formData	string						false	"Legacy 3DS 1.x result"
//	@Success		303			{string}	string						"redirect"
//	@Failure		400			{object}	gatewaysdk.ErrorResponse	"invalid_order"
//	@Router			/v1/3ds/callback [post].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	query := r.URL.Query()
	id := service.ParseOrderReference(query.Get("order_id"))
	key := query.Get("key")
	if id == 0 || key == "" {
		gatewaysdk.ErrInvalidOrder.WriteError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Warn("unreadable challenge callback body", "err", err)
	}
	result := cybersource.ChallengeResult{
		CRes:  r.PostForm.Get("cres"),
		PARes: r.PostForm.Get("PaRes"),
	}

	res, err := h.CheckoutService.ResumeChallenge(ctx, id, key, result)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	redirect := res.Redirect
	if redirect == "" {
		redirect = h.CheckoutService.URLs.OrderReceived(domain.Order{ID: id, Key: key})
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
