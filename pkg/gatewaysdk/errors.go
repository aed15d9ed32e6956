package gatewaysdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/threeds/pkg/httpx"
)

// Error tokens.
const (
	ErrorCodeInvalidOrder     = "invalid_order"
	ErrorCodeInvalidPayload   = "invalid_payload"
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeOrderPaid        = "order_paid"
	ErrorCodeMissingChallenge = "missing_challenge"
	ErrorCodeServerError      = "server_error"
)

// APIError is an error response of the gateway. Handlers write it with
// WriteError and the SDK returns it for non-2xx responses.
type APIError struct {
	StatusCode int `json:"-"`

	// Code is the fixed error token.
	Code string `json:"error"`

	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(description string) *APIError {
	c := *e
	c.Description = description
	return &c
}

var (
	// ErrInvalidOrder is returned when an order id and key do not identify an
	// order. Unknown ids and wrong keys are indistinguishable.
	ErrInvalidOrder = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidOrder,
		Description: "order not found or key mismatch",
	}

	// ErrInvalidPayload is returned when a webhook body is not a JSON object.
	ErrInvalidPayload = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidPayload,
	}

	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	// ErrOrderPaid is returned when a checkout is attempted for a paid order.
	ErrOrderPaid = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeOrderPaid,
		Description: "order is already paid",
	}

	ErrMissingChallenge = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeMissingChallenge,
		Description: "Missing challenge parameters.",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
