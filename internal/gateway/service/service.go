package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/cryptox"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidOrderKey     = errors.New("order key does not match")
	ErrOrderAlreadyPaid    = errors.New("order is already paid")
	ErrInvalidCard         = errors.New("invalid card details")
	ErrNotConfigured       = errors.New("payment gateway is not configured")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrChallengeMissing    = errors.New("missing challenge parameters")
	ErrChallengeNotPending = errors.New("no pending 3ds challenge")
)

// Buyer-facing messages.
const (
	MsgFillCardDetails   = "Please fill in card details."
	MsgNotConfigured     = "Payment gateway is not configured yet."
	MsgMissingChallenge  = "Missing challenge parameters."
	MsgProcessing        = "Processing payment..."
	MsgRedirectingToBank = "Redirecting to bank challenge page..."
	MsgChallengeExpired  = "3DS challenge expired."
	MsgMissingTxID       = "Missing authentication transaction id."
	MsgChallengeStarted  = "3DS challenge started."
	MsgNotPending        = "3DS challenge is not pending."
	MsgCardUnavailable   = "Card details are no longer available. Please try again."
)

// Stage failure prefixes. The processor's reason, when it has one, is appended
// as " - <reason>".
const (
	failSetup      = "Authentication setup failed"
	failEnrollment = "3DS enrollment/authentication call failed"
	failValidation = "Challenge validation failed"
	failPayment    = "Payment authorization/capture failed"
	failDeclined   = "Payment declined after 3DS"
)

// Outcome is the coarse result of a checkout step.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Result is what a checkout step hands back to the boundary layer: where to
// send the buyer next and, on failure, what to tell them.
type Result struct {
	Result   Outcome `json:"result"`
	Redirect string  `json:"redirect,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Succeeded reports whether the step succeeded.
func (r Result) Succeeded() bool { return r.Result == OutcomeSuccess }

func success(redirect string) Result {
	return Result{Result: OutcomeSuccess, Redirect: redirect}
}

func failure(redirect, message string) Result {
	return Result{Result: OutcomeFailure, Redirect: redirect, Message: message}
}

// Processor is the subset of the processor client the orchestrator drives.
// *cybersource.Client implements it.
type Processor interface {
	IsConfigured() bool
	CreateAuthenticationSetup(ctx context.Context, order cybersource.OrderInfo) cybersource.Envelope
	CheckEnrollment(ctx context.Context, order cybersource.OrderInfo, card cybersource.Card, setupID, returnURL, challengeCode string) cybersource.Envelope
	ValidateAuthentication(ctx context.Context, order cybersource.OrderInfo, txID string, result cybersource.ChallengeResult) cybersource.Envelope
	CreatePayment(ctx context.Context, order cybersource.OrderInfo, card cybersource.Card, auth cybersource.Body) cybersource.Envelope
}

// URLs builds the buyer-facing addresses of an order.
type URLs struct {
	// PublicURL is the externally reachable base of this service.
	PublicURL string
	// CheckoutURL receives buyers whose attempt failed.
	CheckoutURL string
}

func (u URLs) base() string { return strings.TrimRight(u.PublicURL, "/") }

// Checkout is where a failed attempt sends the buyer.
func (u URLs) Checkout() string {
	if u.CheckoutURL != "" {
		return u.CheckoutURL
	}
	return u.base() + "/checkout"
}

// OrderReceived is the order status page.
func (u URLs) OrderReceived(o domain.Order) string {
	return fmt.Sprintf("%s/v1/orders/%d?%s", u.base(), o.ID, url.Values{"key": {o.Key}}.Encode())
}

// Challenge is the interstitial page that forwards the buyer to the issuer.
func (u URLs) Challenge(o domain.Order) string {
	return fmt.Sprintf("%s/v1/orders/%d/challenge?%s", u.base(), o.ID, url.Values{"key": {o.Key}}.Encode())
}

// Return is the callback the issuer posts its result to. It carries the
// order id and key so the order can be re-identified.
func (u URLs) Return(o domain.Order) string {
	q := url.Values{"order_id": {o.Reference()}, "key": {o.Key}}
	return u.base() + "/v1/3ds/callback?" + q.Encode()
}

// loadOrder fetches an order and checks the caller's key against it.
func loadOrder(ctx context.Context, st store.Store, orderID int64, key string) (domain.Order, error) {
	log := slogx.FromContext(ctx)

	order, err := st.Orders().GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		log.Error("failed to fetch order", slog.Int64("order_id", orderID), slog.Any("error", err))
		return domain.Order{}, err
	}

	if !cryptox.EqualKeys(order.Key, key) {
		log.Warn("order key mismatch", slog.Int64("order_id", orderID))
		return domain.Order{}, ErrInvalidOrderKey
	}
	return order, nil
}

// setStatus moves an order to status and records why.
func setStatus(ctx context.Context, st store.Store, orderID int64, status domain.OrderStatus, note string) error {
	return st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Orders().UpdateOrderStatus(ctx, orderID, status); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if note == "" {
			return nil
		}
		if err := tx.Orders().AddOrderNote(ctx, orderID, note); err != nil {
			return fmt.Errorf("add order note: %w", err)
		}
		return nil
	})
}

// orderInfo is the processor's view of an order.
func orderInfo(o domain.Order) cybersource.OrderInfo {
	return cybersource.OrderInfo{
		Reference:   o.Reference(),
		TotalAmount: o.TotalAmount(),
		Currency:    o.Currency,
		BillTo: cybersource.BillTo{
			FirstName:          o.Billing.FirstName,
			LastName:           o.Billing.LastName,
			Address1:           o.Billing.Address1,
			Locality:           o.Billing.City,
			AdministrativeArea: o.Billing.State,
			PostalCode:         o.Billing.Postcode,
			Country:            o.Billing.Country,
			Email:              o.Email,
			PhoneNumber:        o.Phone,
		},
	}
}

// ParseOrderReference turns a client reference code into an order id. It
// returns 0 for anything that is not a positive integer.
func ParseOrderReference(code string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(code), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func nowFunc(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}
