package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/domain"
	"github.com/aussiebroadwan/threeds/internal/gateway/store"
	"github.com/aussiebroadwan/threeds/pkg/slogx"
)

// ChallengeForm is what the interstitial page posts to the issuer.
type ChallengeForm struct {
	Action string // issuer step-up URL
	JWT    string
}

// ChallengeService serves the outbound half of the issuer challenge.
type ChallengeService struct {
	Store store.Store
	// Sessions defaults to Store.Sessions().
	Sessions store.Sessions
	Now      func() time.Time
}

// ChallengeForm returns the auto-submit form for an order's pending
// challenge. ErrChallengeNotPending means there is nothing to forward the
// buyer to; ErrChallengeMissing means the processor did not hand out a
// usable step-up URL and token.
func (s *ChallengeService) ChallengeForm(ctx context.Context, orderID int64, key string) (ChallengeForm, error) {
	log := slogx.FromContext(ctx)

	order, err := loadOrder(ctx, s.Store, orderID, key)
	if err != nil {
		return ChallengeForm{}, err
	}

	sessions := s.Sessions
	if sessions == nil {
		sessions = s.Store.Sessions()
	}

	session, err := sessions.GetSession(ctx, order.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ChallengeForm{}, ErrChallengeNotPending
		}
		log.Error("failed to fetch auth session", slog.Int64("order_id", order.ID), slog.Any("error", err))
		return ChallengeForm{}, err
	}

	if session.State != domain.StateChallengeRequired || !session.ChallengeRequired {
		return ChallengeForm{}, ErrChallengeNotPending
	}
	if session.Expired(nowFunc(s.Now)) {
		return ChallengeForm{}, ErrChallengeNotPending
	}

	if !session.Challenge.Complete() {
		log.Warn("challenge payload incomplete",
			slog.Int64("order_id", order.ID),
			slog.String("session_id", session.ID),
			slog.Bool("has_step_up_url", session.Challenge.StepUpURL != ""),
		)
		return ChallengeForm{}, ErrChallengeMissing
	}

	return ChallengeForm{
		Action: session.Challenge.StepUpURL,
		JWT:    session.Challenge.JWT(),
	}, nil
}
