/*
Package gatewaysdk provides a client SDK for the 3-D Secure checkout gateway.

# Overview

The gateway pays host orders through the processor's 3DS flow. This package
carries the wire types shared by the HTTP handlers and by callers, plus a
small client for the JSON endpoints:

	client := gatewaysdk.NewSDKClient("https://pay.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Create an order and start a checkout
	order, err := client.CreateOrder(ctx, gatewaysdk.CreateOrderRequest{
		TotalMinor: 1999,
		Currency:   "USD",
	})
	result, err := client.Checkout(ctx, order.ID, order.Key, gatewaysdk.CheckoutRequest{
		Number:   "4111111111111111",
		ExpMonth: "12",
		ExpYear:  "2030",
		CVC:      "123",
	})

A successful checkout either captures straight away or answers with a
redirect to the challenge page. Browsers follow that redirect; the issuer
posts its result back to the callback endpoint, which redirects the buyer to
the order page.

# Error Handling

Non-2xx responses are returned as *APIError values carrying the HTTP status
and a fixed error token such as "invalid_order" or "invalid_payload":

	_, err := client.GetOrder(ctx, id, "wrong-key")
	var apiErr *gatewaysdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == gatewaysdk.ErrorCodeInvalidOrder {
		// ...
	}

Handlers use the same type to write responses through WriteError.
*/
package gatewaysdk
