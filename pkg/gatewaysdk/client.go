package gatewaysdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the checkout gateway's JSON endpoints.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new gateway client. Redirects are not followed so
// callers can inspect where the gateway sends the buyer.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}
