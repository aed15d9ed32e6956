package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/pkg/gatewaysdk"
	"github.com/aussiebroadwan/threeds/pkg/httpx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

type WebhookHandler struct {
	WebhookService *service.WebhookService
}

// ServeHTTP godoc
//
//	@Summary		Processor Webhook
//	@Description	Asynchronous processor notification. Any JSON object is acknowledged; a matching order
//	@Description	(clientReferenceInformation.code) gets a note and its last_webhook metadata updated.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		plain
//	@Param			payload	body		object						true	"Notification body"
//	@Success		200		{string}	string						"ok"
//	@Failure		400		{object}	gatewaysdk.ErrorResponse	"invalid_payload"
//	@Router			/v1/webhooks/cybersource [post].
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		gatewaysdk.ErrInvalidPayload.WriteError(w)
		return
	}

	if _, err := h.WebhookService.Receive(ctx, raw); err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			gatewaysdk.ErrInvalidPayload.WriteError(w)
			return
		}
		log.Error("failed to record webhook", "err", err)
		gatewaysdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteText(w, http.StatusOK, "ok")
}
