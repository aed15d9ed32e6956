package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionState is a stage of the 3DS flow for one checkout attempt.
type SessionState string

const (
	StateInit              SessionState = "INIT"
	StateSetupDone         SessionState = "SETUP_DONE"
	StateChallengeRequired SessionState = "CHALLENGE_REQUIRED"
	StateNotRequired       SessionState = "NOT_REQUIRED"
	StateValidating        SessionState = "VALIDATING"
	StateAuthenticated     SessionState = "AUTHENTICATED"
	StateCaptured          SessionState = "CAPTURED"
	StateDeclined          SessionState = "DECLINED"
	StateFailed            SessionState = "FAILED"
)

var ErrInvalidTransition = errors.New("domain: invalid session transition")

// transitions lists the forward edges. FAILED is reachable from every
// non-terminal state and is not repeated here.
var transitions = map[SessionState][]SessionState{
	StateInit:              {StateSetupDone},
	StateSetupDone:         {StateChallengeRequired, StateNotRequired},
	StateChallengeRequired: {StateValidating},
	StateValidating:        {StateAuthenticated},
	StateNotRequired:       {StateCaptured, StateDeclined},
	StateAuthenticated:     {StateCaptured, StateDeclined},
}

// Terminal reports whether no further transition is possible.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCaptured, StateDeclined, StateFailed:
		return true
	}
	return false
}

// CanTransition reports whether s may move to next.
func (s SessionState) CanTransition(next SessionState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ChallengePayload is what the buyer's browser needs to reach the issuer.
type ChallengePayload struct {
	StepUpURL   string
	AccessToken string
	PAReq       string // legacy 3DS 1.x request
}

// JWT is the value posted to the step-up URL: the access token when present,
// otherwise the legacy PAReq.
func (c ChallengePayload) JWT() string {
	if c.AccessToken != "" {
		return c.AccessToken
	}
	return c.PAReq
}

// Complete reports whether both a step-up URL and a token are present.
func (c ChallengePayload) Complete() bool {
	return c.StepUpURL != "" && c.JWT() != ""
}

// Session is the authentication session of an order. There is at most one
// per order; a new checkout attempt replaces it with a new ID.
type Session struct {
	ID                string // ULID of the checkout attempt
	OrderID           int64
	State             SessionState
	SetupReferenceID  string
	AuthTransactionID string
	ChallengeRequired bool
	Challenge         ChallengePayload
	SealedCard        []byte    // cardvault output, nil once the session is terminal
	ExpiresAt         time.Time // zero means no expiry
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSession starts a session in INIT.
func NewSession(id string, orderID int64, now time.Time) Session {
	return Session{
		ID:        id,
		OrderID:   orderID,
		State:     StateInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the session to next. Entering a terminal state drops the
// card snapshot.
func (s *Session) Transition(next SessionState, now time.Time) error {
	if !s.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, next)
	}
	s.State = next
	s.UpdatedAt = now
	if next.Terminal() {
		s.SealedCard = nil
	}
	return nil
}

// Expired reports whether the session carries an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
