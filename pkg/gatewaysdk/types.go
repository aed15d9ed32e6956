package gatewaysdk

import "time"

// ErrorResponse is the wire form of an APIError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains the status of individual components (only in /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the order store connection status
	Database string `json:"database"`

	// Sessions indicates the auth session store status
	Sessions string `json:"sessions"`

	// Processor reports whether processor credentials are configured
	Processor string `json:"processor"`
}

// Address is the billing contact of an order.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
}

// CreateOrderRequest creates a pending order.
type CreateOrderRequest struct {
	// TotalMinor is the order total in minor units (cents)
	TotalMinor int64   `json:"total_minor" example:"1999"`
	Currency   string  `json:"currency" example:"USD"`
	Billing    Address `json:"billing"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
}

// CreateOrderResponse carries the order key needed by every other call.
type CreateOrderResponse struct {
	ID     int64  `json:"id"`
	Key    string `json:"key"`
	Status string `json:"status"`
	Total  string `json:"total" example:"19.99"`
}

// OrderNote is one entry of an order's audit trail.
type OrderNote struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// WebhookEvent summarizes a notification matched to an order.
type WebhookEvent struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// OrderResponse is the order view.
type OrderResponse struct {
	ID            int64          `json:"id"`
	Status        string         `json:"status" example:"processing"`
	Total         string         `json:"total"`
	Currency      string         `json:"currency"`
	TransactionID string         `json:"transaction_id,omitempty"`
	SessionState  string         `json:"session_state,omitempty" example:"CAPTURED"`
	Notes         []OrderNote    `json:"notes"`
	Webhooks      []WebhookEvent `json:"webhooks"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CheckoutRequest carries the raw card fields of one attempt.
type CheckoutRequest struct {
	Number   string `json:"number" example:"4111111111111111"`
	ExpMonth string `json:"exp_month" example:"12"`
	ExpYear  string `json:"exp_year" example:"2030"`
	CVC      string `json:"cvc" example:"123"`
}

// CheckoutResponse tells the caller where to send the buyer.
type CheckoutResponse struct {
	// Result is "success" or "failure"
	Result   string `json:"result" example:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Succeeded reports whether the step succeeded.
func (r CheckoutResponse) Succeeded() bool { return r.Result == "success" }
