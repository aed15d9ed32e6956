package gatewaysdk

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// SendWebhook posts a raw notification body, the way the processor does.
func (c *SDKClient) SendWebhook(ctx context.Context, body []byte) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/webhooks/cybersource", bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return parseErrorResponse(resp, raw)
}
