package gatewaysdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func orderPath(id int64, suffix, key string) string {
	return fmt.Sprintf("/v1/orders/%d%s?%s", id, suffix, url.Values{"key": {key}}.Encode())
}

// CreateOrder creates a pending order.
func (c *SDKClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/orders", req)
	if err != nil {
		return nil, err
	}

	var out CreateOrderResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder reads an order with its notes and matched webhook events.
func (c *SDKClient) GetOrder(ctx context.Context, id int64, key string) (*OrderResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, orderPath(id, "", key), nil, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out OrderResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkout starts a payment attempt. A failed attempt is not an error: it
// comes back as a CheckoutResponse with Result "failure".
func (c *SDKClient) Checkout(ctx context.Context, id int64, key string, card CheckoutRequest) (*CheckoutResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, orderPath(id, "/checkout", key), card)
	if err != nil {
		return nil, err
	}

	var out CheckoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
