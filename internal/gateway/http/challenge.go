package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/pkg/gatewaysdk"
)

type ChallengePageHandler struct {
	ChallengeService *service.ChallengeService
	URLs             service.URLs
}

// ServeHTTP godoc
//
//	@Summary		Challenge Page
//	@Description	Interstitial page that forwards the buyer to the issuer's step-up URL with an auto-submitting form carrying the JWT.
//	@Tags			Checkout
//	@Produce		html
//	@Param			id	path		int							true	"Order id"
//	@Param			key	query		string						true	"Order key"
//	@Success		200	{string}	string						"HTML page"
//	@Failure		400	{object}	gatewaysdk.ErrorResponse	"invalid_order"
//	@Failure		409	{string}	string						"HTML page: missing challenge parameters"
//	@Router			/v1/orders/{id}/challenge [get].
func (h *ChallengePageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := service.ParseOrderReference(r.PathValue("id"))
	if id == 0 {
		gatewaysdk.ErrInvalidOrder.WriteError(w)
		return
	}
	key := r.URL.Query().Get("key")

	form, err := h.ChallengeService.ChallengeForm(ctx, id, key)
	switch {
	case err == nil:
		renderPage(w, http.StatusOK, pageData{
			Message: service.MsgRedirectingToBank,
			Action:  form.Action,
			JWT:     form.JWT,
		})
	case errors.Is(err, service.ErrChallengeNotPending):
		renderPage(w, http.StatusOK, pageData{
			Message: service.MsgProcessing,
			Next:    h.URLs.OrderReceived(domain.Order{ID: id, Key: key}),
		})
	case errors.Is(err, service.ErrChallengeMissing):
		renderPage(w, http.StatusConflict, pageData{Message: service.MsgMissingChallenge})
	default:
		writeOrderError(w, r, err)
	}
}
