package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/threeds/pkg/cardvault"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/stretchr/testify/require"
)

const testOrderKey = "wc_order_test"

var testNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeProcessor answers each stage with a canned envelope and records what
// it was asked.
type fakeProcessor struct {
	mu sync.Mutex

	unconfigured bool
	setup        cybersource.Envelope
	enrollment   cybersource.Envelope
	validation   cybersource.Envelope
	payment      cybersource.Envelope

	calls      []string
	returnURL  string
	txID       string
	result     cybersource.ChallengeResult
	paidCard   cybersource.Card
	paidAuth   cybersource.Body
	setupRefID string

	// onValidate runs while validation is in flight.
	onValidate func()
}

func (p *fakeProcessor) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakeProcessor) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakeProcessor) IsConfigured() bool { return !p.unconfigured }

func (p *fakeProcessor) CreateAuthenticationSetup(ctx context.Context, order cybersource.OrderInfo) cybersource.Envelope {
	p.record("setup")
	return p.setup
}

func (p *fakeProcessor) CheckEnrollment(ctx context.Context, order cybersource.OrderInfo, card cybersource.Card, setupID, returnURL, challengeCode string) cybersource.Envelope {
	p.record("enrollment")
	p.mu.Lock()
	p.setupRefID = setupID
	p.returnURL = returnURL
	p.mu.Unlock()
	return p.enrollment
}

func (p *fakeProcessor) ValidateAuthentication(ctx context.Context, order cybersource.OrderInfo, txID string, result cybersource.ChallengeResult) cybersource.Envelope {
	p.record("validate")
	if p.onValidate != nil {
		p.onValidate()
	}
	p.mu.Lock()
	p.txID = txID
	p.result = result
	p.mu.Unlock()
	return p.validation
}

func (p *fakeProcessor) CreatePayment(ctx context.Context, order cybersource.OrderInfo, card cybersource.Card, auth cybersource.Body) cybersource.Envelope {
	p.record("payment")
	p.mu.Lock()
	p.paidCard = card
	p.paidAuth = auth
	p.mu.Unlock()
	return p.payment
}

func envelope(status int, body string) cybersource.Envelope {
	return cybersource.NewEnvelope(status, []byte(body))
}

// happyProcessor authenticates without a challenge and authorizes.
func happyProcessor() *fakeProcessor {
	return &fakeProcessor{
		setup:      envelope(201, `{"consumerAuthenticationInformation":{"referenceId":"ref-1"}}`),
		enrollment: envelope(201, `{"consumerAuthenticationInformation":{"challengeRequired":"N","veresEnrolled":"N","authenticationTransactionId":"tx-1"}}`),
		validation: envelope(201, `{"consumerAuthenticationInformation":{"cavv":"AAAB","xid":"X1","eciRaw":"05"}}`),
		payment:    envelope(201, `{"id":"pay-1","status":"AUTHORIZED","processorInformation":{"responseCode":"00"}}`),
	}
}

// challengeProcessor asks for an issuer challenge during enrollment.
func challengeProcessor() *fakeProcessor {
	p := happyProcessor()
	p.enrollment = envelope(201, `{"consumerAuthenticationInformation":{
		"challengeRequired":"Y","veresEnrolled":"Y","authenticationTransactionId":"tx-7",
		"stepUpUrl":"https://issuer/step","accessToken":"tok123"}}`)
	return p
}

func testCard() cybersource.Card {
	return cybersource.Card{Number: "4111 1111 1111 1111", ExpMonth: "12", ExpYear: "2030", SecurityCode: "123"}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createOrder(t *testing.T, st store.Store) domain.Order {
	t.Helper()

	o, err := st.Orders().CreateOrder(context.Background(), domain.Order{
		Key:        testOrderKey,
		Status:     domain.OrderPending,
		TotalMinor: 1999,
		Currency:   "USD",
		Billing:    domain.Address{FirstName: "Ada", LastName: "Lovelace", Country: "GB"},
		Email:      "ada@example.com",
	})
	require.NoError(t, err)
	return o
}

type checkoutFixture struct {
	svc   *CheckoutService
	proc  *fakeProcessor
	store store.Store
	order domain.Order
	clock *testClock
}

func newCheckoutFixture(t *testing.T, proc *fakeProcessor) checkoutFixture {
	t.Helper()

	st := newTestStore(t)
	vault, err := cardvault.NewWithKey([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	clock := &testClock{now: testNow}
	svc := &CheckoutService{
		Store:     st,
		Processor: proc,
		Vault:     vault,
		URLs:      URLs{PublicURL: "https://shop.example", CheckoutURL: "https://shop.example/checkout"},
		Now:       clock.Now,
	}

	return checkoutFixture{svc: svc, proc: proc, store: st, order: createOrder(t, st), clock: clock}
}

func (f checkoutFixture) reload(t *testing.T) domain.Order {
	t.Helper()
	o, err := f.store.Orders().GetOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	return o
}

func (f checkoutFixture) notes(t *testing.T) []string {
	t.Helper()
	notes, err := f.store.Orders().ListOrderNotes(context.Background(), f.order.ID)
	require.NoError(t, err)

	bodies := make([]string, 0, len(notes))
	for _, n := range notes {
		bodies = append(bodies, n.Body)
	}
	return bodies
}

func (f checkoutFixture) meta(t *testing.T, key string) []byte {
	t.Helper()
	v, err := f.store.OrderMeta().GetMeta(context.Background(), f.order.ID, key)
	require.NoError(t, err)
	return v
}
