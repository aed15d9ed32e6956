package cybersource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every processor call.
const DefaultTimeout = 45 * time.Second

const tracerName = "github.com/aussiebroadwan/threeds/pkg/cybersource"

// Client issues signed requests to the processor REST API. It performs a
// single attempt per call and never retries.
type Client struct {
	creds      Credentials
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	debug      bool
	now        func() time.Time
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBaseURL points the client at a different origin. The signed host is
// taken from this URL. Used for tests and regional endpoints.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(strings.TrimSuffix(raw, "/")); err == nil && u.Host != "" {
			c.baseURL = u
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebug enables logging of every call's method, resource, status and body.
// The lines are written at info level so the switch works whatever the
// logger's level is.
func WithDebug(on bool) Option {
	return func(c *Client) { c.debug = on }
}

// WithTracerProvider sets where request spans are recorded. Without it the
// global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithClock overrides the clock used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for creds. The host is derived from the
// credentials' environment unless WithBaseURL is given.
func NewClient(creds Credentials, opts ...Option) *Client {
	creds = creds.Normalize()
	c := &Client{
		creds:      creds,
		baseURL:    &url.URL{Scheme: "https", Host: creds.Environment.Host()},
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		now:        time.Now,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns the normalized credentials the client signs with.
func (c *Client) Credentials() Credentials { return c.creds }

// IsConfigured reports whether the client has complete credentials.
func (c *Client) IsConfigured() bool { return c.creds.IsConfigured() }

// Host is the value signed into the host header.
func (c *Client) Host() string { return c.baseURL.Host }

// Request marshals payload, signs it and sends it. Transport failures and
// marshalling errors are reported through the envelope, never as errors.
func (c *Client) Request(ctx context.Context, method, resource string, payload any) Envelope {
	method = strings.ToUpper(method)

	ctx, span := c.tracer.Start(ctx, "cybersource "+method+" "+resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("cybersource.resource", resource),
			attribute.String("server.address", c.Host()),
		),
	)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.SetStatus(codes.Error, "marshal payload")
		return TransportFailure(fmt.Errorf("marshal payload: %w", err))
	}

	req, err := c.newSignedRequest(ctx, method, resource, body)
	if err != nil {
		span.SetStatus(codes.Error, "build request")
		return TransportFailure(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.WarnContext(ctx, "cybersource request failed",
			"method", method,
			"resource", resource,
			"error", err,
		)
		return TransportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return TransportFailure(fmt.Errorf("read response body: %w", err))
	}

	env := NewEnvelope(resp.StatusCode, raw)
	span.SetAttributes(attribute.Int("http.response.status_code", env.Status))
	if !env.OK {
		span.SetStatus(codes.Error, http.StatusText(env.Status))
	}

	if c.debug {
		c.logger.InfoContext(ctx, fmt.Sprintf("Cybersource %s %s -> %d", method, resource, env.Status),
			"source", "cybersource",
			"body", env.Body,
		)
	}

	return env
}

// newSignedRequest builds the HTTP request with the digest and signature
// headers for body.
func (c *Client) newSignedRequest(ctx context.Context, method, resource string, body []byte) (*http.Request, error) {
	target := c.baseURL.String() + resource
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	in := SignatureInput{
		Host:       c.Host(),
		Resource:   resource,
		Date:       FormatDate(c.now()),
		Digest:     Digest(body),
		MerchantID: c.creds.MerchantID,
	}

	req.Host = in.Host
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("v-c-merchant-id", in.MerchantID)
	req.Header.Set("Date", in.Date)
	req.Header.Set("Host", in.Host)
	req.Header.Set("Digest", in.Digest)
	req.Header.Set("Signature", SignatureHeader(in, c.creds.KeyID, c.creds.SecretKey))

	return req, nil
}
