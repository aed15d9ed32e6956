package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/service"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/httpx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"

	_ "github.com/aussiebroadwan/threeds/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Request body limits.
const (
	maxJSONBody    = 64 << 10
	maxWebhookBody = 1 << 20
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// SessionsPinger is checked by /readyz when sessions live outside the
	// order store (redis).
	SessionsPinger Pinger
	// Configured reports whether processor credentials are complete.
	Configured func() bool

	OrderService     *service.OrderService
	CheckoutService  *service.CheckoutService
	ChallengeService *service.ChallengeService
	WebhookService   *service.WebhookService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOrders()
	r.registerCheckout()
	r.registerWebhooks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			3-D Secure Checkout Gateway API
//	@version		0.1.0
//	@description	Pays host orders through Cybersource's EMV 3-D Secure 2.x flow: authentication setup, enrollment,
//	@description	an optional issuer challenge and capture.
//	@description
//	@description	Buyer-facing endpoints are authorized by the order key returned when the order is created.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/threeds
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOrders() {
	h := &OrdersHandler{OrderService: r.OrderService}

	// POST /v1/orders - moderate rate limit by IP (reference host surface)
	r.Mux.Handle("POST /v1/orders",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.MaxBytes(maxJSONBody),
		),
	)

	// GET /v1/orders/{id} - lenient rate limit (buyers land here after every attempt)
	r.Mux.Handle("GET /v1/orders/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerCheckout() {
	// POST /checkout - strict rate limit by IP + order (every attempt costs processor calls)
	r.Mux.Handle("POST /v1/orders/{id}/checkout",
		httpx.Chain(&CheckoutHandler{CheckoutService: r.CheckoutService},
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "id"),
			httpx.MaxBytes(maxJSONBody),
		),
	)

	// GET /challenge - lenient rate limit (just renders the auto-submit form)
	r.Mux.Handle("GET /v1/orders/{id}/challenge",
		httpx.Chain(&ChallengePageHandler{ChallengeService: r.ChallengeService, URLs: r.CheckoutService.URLs},
			httpx.SecurityHeaders,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /3ds/callback - moderate rate limit by IP + order (issuer redirects the buyer's browser here).
	// The body cap wraps the limiter since keying parses the form.
	r.Mux.Handle("POST /v1/3ds/callback",
		httpx.Chain(&CallbackHandler{CheckoutService: r.CheckoutService},
			httpx.MaxBytes(maxJSONBody),
			httpx.RateLimitByIPAndFormField(httpx.ModerateLimit, "order_id"),
		),
	)
}

func (r *Router) registerWebhooks() {
	// POST /webhooks - public limit (processor delivers from a small set of IPs)
	r.Mux.Handle("POST /v1/webhooks/cybersource",
		httpx.Chain(&WebhookHandler{WebhookService: r.WebhookService},
			httpx.RateLimitByIP(httpx.PublicLimit),
			httpx.MaxBytes(maxWebhookBody),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SessionsPinger, r.Configured),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
