package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/cardvault"
	"github.com/aussiebroadwan/threeds/pkg/cybersource"
	"github.com/aussiebroadwan/threeds/pkg/idx"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultChallengeTTL bounds how long a buyer may take at the issuer.
const DefaultChallengeTTL = 30 * time.Minute

// CheckoutService drives the 3DS flow of an order: authentication setup,
// enrollment, the optional issuer challenge and the final capture.
type CheckoutService struct {
	Store store.Store
	// Sessions defaults to Store.Sessions().
	Sessions  store.Sessions
	Processor Processor
	Vault     *cardvault.Vault
	URLs      URLs

	ChallengeCode string
	ChallengeTTL  time.Duration

	IDs *idx.Generator
	Now func() time.Time
}

func (s *CheckoutService) sessions() store.Sessions {
	if s.Sessions != nil {
		return s.Sessions
	}
	return s.Store.Sessions()
}

func (s *CheckoutService) newID() string {
	if s.IDs != nil {
		return s.IDs.New().String()
	}
	return idx.New().String()
}

func (s *CheckoutService) challengeTTL() time.Duration {
	if s.ChallengeTTL > 0 {
		return s.ChallengeTTL
	}
	return DefaultChallengeTTL
}

func cardAAD(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// Checkout starts a payment attempt for an order.
//
// The returned Result tells the caller where to send the buyer. Processor
// failures are reported through the Result and the order; the error is
// reserved for bad input and storage failures.
func (s *CheckoutService) Checkout(ctx context.Context, orderID int64, key string, card cybersource.Card) (Result, error) {
	log := slogx.FromContext(ctx).With(slog.Int64("order_id", orderID))

	// 1. Re-identify the order.
	order, err := loadOrder(ctx, s.Store, orderID, key)
	if err != nil {
		return Result{}, err
	}
	if order.IsPaid() {
		return failure(s.URLs.OrderReceived(order), ""), ErrOrderAlreadyPaid
	}

	// 2. Validate card fields, then the gateway configuration.
	card = card.Normalized()
	if err := card.Validate(); err != nil {
		log.Debug("card validation failed", slog.Any("error", err))
		return failure("", MsgFillCardDetails), ErrInvalidCard
	}
	if !s.Processor.IsConfigured() {
		log.Warn("checkout attempted without processor credentials")
		return failure("", MsgNotConfigured), ErrNotConfigured
	}

	// 3. A new attempt replaces whatever session the order had.
	now := nowFunc(s.Now)
	info := orderInfo(order)
	session := domain.NewSession(s.newID(), order.ID, now)

	// 4. Authentication setup.
	setup := s.Processor.CreateAuthenticationSetup(ctx, info)
	if !setup.OK {
		return s.fail(ctx, order, &session, domain.StateFailed, failSetup, setup)
	}
	if err := s.Store.OrderMeta().PutMeta(ctx, order.ID, domain.MetaAuthSetup, setup.Body.JSON()); err != nil {
		return Result{}, err
	}
	session.SetupReferenceID = cybersource.SetupReferenceID(setup.Body)
	if err := session.Transition(domain.StateSetupDone, nowFunc(s.Now)); err != nil {
		return Result{}, err
	}

	// 5. Enrollment check.
	enrollment := s.Processor.CheckEnrollment(ctx, info, card, session.SetupReferenceID, s.URLs.Return(order), s.ChallengeCode)
	if !enrollment.OK {
		return s.fail(ctx, order, &session, domain.StateFailed, failEnrollment, enrollment)
	}
	if err := s.Store.OrderMeta().PutMeta(ctx, order.ID, domain.MetaAuthInitial, enrollment.Body.JSON()); err != nil {
		return Result{}, err
	}

	decision := cybersource.ParseEnrollment(enrollment.Body)
	session.AuthTransactionID = decision.AuthenticationTransactionID

	log.Info("3ds enrollment checked",
		slog.String("session_id", session.ID),
		slog.Bool("challenge_required", decision.ChallengeRequired),
		slog.String("veres_enrolled", decision.VeresEnrolled),
	)

	// 6. Challenge: park the order and send the buyer to the interstitial page.
	if decision.ChallengeRequired {
		return s.startChallenge(ctx, order, &session, card, decision)
	}

	// 7. No challenge, whatever the enrollment class: capture with the
	// enrollment response as evidence.
	if err := session.Transition(domain.StateNotRequired, nowFunc(s.Now)); err != nil {
		return Result{}, err
	}
	return s.capture(ctx, order, &session, card, enrollment.Body)
}

func (s *CheckoutService) startChallenge(
	ctx context.Context,
	order domain.Order,
	session *domain.Session,
	card cybersource.Card,
	decision cybersource.Enrollment,
) (Result, error) {
	log := slogx.FromContext(ctx)
	now := nowFunc(s.Now)

	if err := session.Transition(domain.StateChallengeRequired, now); err != nil {
		return Result{}, err
	}
	session.ChallengeRequired = true
	session.Challenge = domain.ChallengePayload{
		StepUpURL:   decision.StepUpURL,
		AccessToken: decision.AccessToken,
		PAReq:       decision.PAReq,
	}
	session.ExpiresAt = challengeExpiry(now, s.challengeTTL(), decision.AccessToken)

	sealed, err := s.Vault.SealJSON(card, cardAAD(order.ID))
	if err != nil {
		log.Error("failed to seal card snapshot", slog.Any("error", err))
		return Result{}, err
	}
	session.SealedCard = sealed

	if err := s.sessions().PutSession(ctx, *session); err != nil {
		log.Error("failed to store auth session", slog.Any("error", err))
		return Result{}, err
	}
	if err := setStatus(ctx, s.Store, order.ID, domain.OrderOnHold, MsgChallengeStarted); err != nil {
		log.Error("failed to park order for challenge", slog.Any("error", err))
		return Result{}, err
	}

	log.Info("3ds challenge started",
		slog.String("session_id", session.ID),
		slog.Time("expires_at", session.ExpiresAt),
	)
	return success(s.URLs.Challenge(order)), nil
}

// challengeExpiry is now+ttl, or the access token's exp when that is earlier.
// The token is read without verification; only its expiry is used.
func challengeExpiry(now time.Time, ttl time.Duration, accessToken string) time.Time {
	expiry := now.Add(ttl)
	if accessToken == "" {
		return expiry
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return expiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expiry
	}
	if exp.After(now) && exp.Before(expiry) {
		return exp.Time
	}
	return expiry
}

// ResumeChallenge completes an attempt after the issuer posts the challenge
// result back. The order key is checked before anything else.
func (s *CheckoutService) ResumeChallenge(ctx context.Context, orderID int64, key string, result cybersource.ChallengeResult) (Result, error) {
	log := slogx.FromContext(ctx).With(slog.Int64("order_id", orderID))

	// 1. Tamper check.
	order, err := loadOrder(ctx, s.Store, orderID, key)
	if err != nil {
		return Result{}, err
	}

	// 2. Resolve the current session; without one there is no transaction
	// id to validate against.
	session, err := s.sessions().GetSession(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to fetch auth session", slog.Any("error", err))
			return Result{}, err
		}
		log.Warn("challenge callback without auth session")
		if err := setStatus(ctx, s.Store, order.ID, domain.OrderFailed, MsgMissingTxID); err != nil {
			return Result{}, err
		}
		return failure(s.URLs.OrderReceived(order), MsgMissingTxID), nil
	}

	// 3. Replays and late duplicates leave the order alone.
	if session.State != domain.StateChallengeRequired {
		log.Warn("challenge callback for session that is not pending",
			slog.String("session_id", session.ID),
			slog.String("state", string(session.State)),
		)
		return failure(s.URLs.OrderReceived(order), MsgNotPending), nil
	}

	// 4. Abandoned challenges fail closed.
	now := nowFunc(s.Now)
	if session.Expired(now) {
		if _, err := s.expire(ctx, order.ID, session); err != nil {
			return Result{}, err
		}
		return failure(s.URLs.Checkout(), MsgChallengeExpired), nil
	}

	if session.AuthTransactionID == "" {
		log.Warn("challenge callback without authentication transaction id", slog.String("session_id", session.ID))
		if err := session.Transition(domain.StateFailed, now); err != nil {
			return Result{}, err
		}
		if err := s.sessions().PutSession(ctx, session); err != nil {
			return Result{}, err
		}
		if err := setStatus(ctx, s.Store, order.ID, domain.OrderFailed, MsgMissingTxID); err != nil {
			return Result{}, err
		}
		return failure(s.URLs.OrderReceived(order), MsgMissingTxID), nil
	}

	// 5. Mark the session as in flight so a concurrent replay is rejected.
	// An in-flight session no longer expires; the sweeper must not fail an
	// order whose capture is under way.
	if err := session.Transition(domain.StateValidating, now); err != nil {
		return Result{}, err
	}
	session.ExpiresAt = time.Time{}
	if err := s.sessions().PutSession(ctx, session); err != nil {
		return Result{}, err
	}

	// 6. Validate the issuer's result.
	info := orderInfo(order)
	validation := s.Processor.ValidateAuthentication(ctx, info, session.AuthTransactionID, result)
	if !validation.OK {
		return s.fail(ctx, order, &session, domain.StateFailed, failValidation, validation)
	}
	if err := s.Store.OrderMeta().PutMeta(ctx, order.ID, domain.MetaAuthFinal, validation.Body.JSON()); err != nil {
		return Result{}, err
	}
	if err := session.Transition(domain.StateAuthenticated, nowFunc(s.Now)); err != nil {
		return Result{}, err
	}

	// 7. Recover the card snapshot and capture.
	var card cybersource.Card
	if err := s.Vault.OpenJSON(session.SealedCard, cardAAD(order.ID), &card); err != nil {
		log.Error("failed to open card snapshot", slog.String("session_id", session.ID), slog.Any("error", err))
		return s.failWithMessage(ctx, order, &session, domain.StateFailed, MsgCardUnavailable)
	}
	return s.capture(ctx, order, &session, card, validation.Body)
}

// capture runs the final payment call and settles the order.
func (s *CheckoutService) capture(
	ctx context.Context,
	order domain.Order,
	session *domain.Session,
	card cybersource.Card,
	auth cybersource.Body,
) (Result, error) {
	log := slogx.FromContext(ctx)

	payment := s.Processor.CreatePayment(ctx, orderInfo(order), card, auth)
	if !payment.OK {
		return s.fail(ctx, order, session, domain.StateFailed, failPayment, payment)
	}
	if err := s.Store.OrderMeta().PutMeta(ctx, order.ID, domain.MetaPaymentResponse, payment.Body.JSON()); err != nil {
		return Result{}, err
	}

	decision := cybersource.ParsePayment(payment.Body)
	if !decision.Succeeded() {
		return s.fail(ctx, order, session, domain.StateDeclined, failDeclined, payment)
	}

	note := "Cybersource payment success. ResponseCode: " + decision.ResponseCode
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if decision.TransactionID != "" {
			if err := tx.Orders().SetTransactionID(ctx, order.ID, decision.TransactionID); err != nil {
				return err
			}
		}
		if err := tx.Orders().UpdateOrderStatus(ctx, order.ID, domain.OrderProcessing); err != nil {
			return err
		}
		return tx.Orders().AddOrderNote(ctx, order.ID, note)
	})
	if err != nil {
		log.Error("failed to record payment", slog.Int64("order_id", order.ID), slog.Any("error", err))
		return Result{}, err
	}

	if err := session.Transition(domain.StateCaptured, nowFunc(s.Now)); err != nil {
		return Result{}, err
	}
	session.ExpiresAt = time.Time{}
	if err := s.sessions().PutSession(ctx, *session); err != nil {
		log.Error("failed to store auth session", slog.Any("error", err))
		return Result{}, err
	}

	log.Info("payment captured",
		slog.Int64("order_id", order.ID),
		slog.String("session_id", session.ID),
		slog.String("transaction_id", decision.TransactionID),
		slog.String("response_code", decision.ResponseCode),
	)
	return success(s.URLs.OrderReceived(order)), nil
}

// fail ends the attempt at a processor failure. The order is marked failed
// with the stage message and the processor's reason.
func (s *CheckoutService) fail(
	ctx context.Context,
	order domain.Order,
	session *domain.Session,
	terminal domain.SessionState,
	stage string,
	env cybersource.Envelope,
) (Result, error) {
	message := stage
	if reason := env.FailureReason(); reason != "" {
		message += " - " + reason
	}

	slogx.FromContext(ctx).Warn("checkout stage failed",
		slog.Int64("order_id", order.ID),
		slog.String("session_id", session.ID),
		slog.String("stage", stage),
		slog.Int("status", env.Status),
	)
	return s.failWithMessage(ctx, order, session, terminal, message)
}

func (s *CheckoutService) failWithMessage(
	ctx context.Context,
	order domain.Order,
	session *domain.Session,
	terminal domain.SessionState,
	message string,
) (Result, error) {
	if err := session.Transition(terminal, nowFunc(s.Now)); err != nil {
		return Result{}, err
	}
	session.ExpiresAt = time.Time{}
	if err := s.sessions().PutSession(ctx, *session); err != nil {
		return Result{}, err
	}
	if err := setStatus(ctx, s.Store, order.ID, domain.OrderFailed, message); err != nil {
		return Result{}, err
	}
	return failure(s.URLs.Checkout(), message), nil
}

// expire fails the order of an abandoned challenge and drops its session.
// The snapshot is checked against the stored session first, so a callback
// that moved the session on since it was listed wins. It reports whether
// the session was removed.
func (s *CheckoutService) expire(ctx context.Context, orderID int64, snapshot domain.Session) (bool, error) {
	log := slogx.FromContext(ctx)

	current, err := s.sessions().GetSession(ctx, orderID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	if current.ID != snapshot.ID || current.State != snapshot.State || !current.ExpiresAt.Equal(snapshot.ExpiresAt) {
		log.Debug("skipping expiry of changed session",
			slog.Int64("order_id", orderID),
			slog.String("session_id", current.ID),
			slog.String("state", string(current.State)),
		)
		return false, nil
	}

	if !current.State.Terminal() {
		if err := setStatus(ctx, s.Store, orderID, domain.OrderFailed, MsgChallengeExpired); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return false, err
			}
		}
		log.Info("3ds challenge expired",
			slog.Int64("order_id", orderID),
			slog.String("session_id", current.ID),
		)
	}
	if err := s.sessions().DeleteSession(ctx, orderID); err != nil {
		return false, err
	}
	return true, nil
}

// ExpireSessions fails every order whose challenge expired before now and
// deletes the sessions. It returns the number of sessions removed.
func (s *CheckoutService) ExpireSessions(ctx context.Context, now time.Time, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}

	removed := 0
	for {
		expired, err := s.sessions().ListExpiredSessions(ctx, now, batch)
		if err != nil {
			return removed, err
		}
		swept := 0
		for _, session := range expired {
			ok, err := s.expire(ctx, session.OrderID, session)
			if err != nil {
				return removed, err
			}
			if ok {
				swept++
			}
		}
		removed += swept
		if len(expired) < batch || swept == 0 {
			return removed, nil
		}
	}
}
