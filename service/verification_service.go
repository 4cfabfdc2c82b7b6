package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/layer-3/humangate"
	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

// VerificationService runs the human verification protocol:
// start session, fetch challenges, answer them, then mint or refresh a token.
type VerificationService struct {
	sessions  *Sessions
	tokens    *Tokens
	verified  ports.VerifiedStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher

	clock               clock.Clock
	logger              *slog.Logger
	locks               *IdentityLocks
	singleUseChallenges bool
}

// NewVerificationService creates a new verification service.
// eventPub may be nil.
func NewVerificationService(
	store ports.Store,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	opts ...Option,
) *VerificationService {
	o := newOptions(opts)
	return &VerificationService{
		sessions:            NewSessions(store, store),
		tokens:              NewTokens(store),
		verified:            store,
		tokenizer:           tokenizer,
		eventPub:            eventPub,
		clock:               o.clock,
		logger:              o.logger,
		locks:               o.locks,
		singleUseChallenges: o.singleUseChallenges,
	}
}

// StartSession begins (or restarts) verification for an identity that has
// never been verified before
func (s *VerificationService) StartSession(ctx context.Context, identity string) (string, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	session, err := s.sessions.Start(ctx, identity, s.clock.Now())
	if err != nil {
		return "", err
	}

	s.logger.Info("verification session started", "identity", identity)
	if s.eventPub != nil {
		if err := s.eventPub.PublishSessionStarted(ctx, identity, session.StartedAt); err != nil {
			s.logger.Warn("failed to publish session started event", "identity", identity, "error", err)
		}
	}

	return "Session started", nil
}

// GetSession returns the identity's current session
func (s *VerificationService) GetSession(ctx context.Context, identity string) (*core.Session, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	return s.sessions.Get(ctx, identity)
}

// GetChallenge returns the challenge for slot and makes it the session's
// current challenge
func (s *VerificationService) GetChallenge(ctx context.Context, identity string, slot int) (core.Challenge, error) {
	challenge, err := core.ChallengeDefinition(slot)
	if err != nil {
		return core.Challenge{}, err
	}

	unlock := s.locks.Lock(identity)
	defer unlock()

	if err := s.sessions.SetCurrentChallenge(ctx, identity, challenge); err != nil {
		return core.Challenge{}, err
	}

	return challenge, nil
}

// VerifyAnswer grades an answer to the session's current challenge.
// Attempts are unlimited.
func (s *VerificationService) VerifyAnswer(ctx context.Context, identity, challengeID string, answer uint8) (bool, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	correct, err := s.sessions.RecordAnswer(ctx, identity, challengeID, answer, s.singleUseChallenges)
	if err != nil {
		return false, err
	}

	s.logger.Debug("challenge answered", "identity", identity, "challenge_id", challengeID, "correct", correct)
	return correct, nil
}

// MintProof issues a humanity token once the full challenge sequence has been
// passed and records the identity as verified. The completion counter is not
// reset, so an eligible identity may mint again to get a fresh expiry.
func (s *VerificationService) MintProof(ctx context.Context, identity string) (string, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	session, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return "", err
	}
	if session.ChallengesCompleted < core.MintThreshold {
		return "", core.ErrIncompleteChallenges
	}

	// the verified mark goes first: a token must never exist without it
	now := s.clock.Now()
	if err := s.verified.MarkVerified(ctx, identity, now); err != nil {
		return "", fmt.Errorf("failed to record verification: %w", err)
	}

	token, err := s.tokens.Mint(ctx, identity, now)
	if err != nil {
		return "", err
	}

	if err := s.sessions.Complete(ctx, session, now); err != nil {
		return "", err
	}

	s.logger.Info("humanity token minted", "identity", identity, "expires_at", token.ExpiresAt)
	if s.eventPub != nil {
		if err := s.eventPub.PublishTokenMinted(ctx, identity, token.ExpiresAt); err != nil {
			s.logger.Warn("failed to publish token minted event", "identity", identity, "error", err)
		}
	}

	return fmt.Sprintf("Humanity token minted for %s", identity), nil
}

// RefreshToken extends an existing verification with a fresh expiry window.
// A single credited answer is enough, and the previous token may already
// have expired.
func (s *VerificationService) RefreshToken(ctx context.Context, identity string) (string, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	completed, err := s.sessions.CompletedCount(ctx, identity)
	if err != nil {
		return "", err
	}
	if completed < core.RefreshThreshold {
		return "", core.ErrNotEligible
	}

	token, err := s.tokens.Mint(ctx, identity, s.clock.Now())
	if err != nil {
		return "", err
	}

	s.logger.Info("humanity token refreshed", "identity", identity, "expires_at", token.ExpiresAt)
	if s.eventPub != nil {
		if err := s.eventPub.PublishTokenRefreshed(ctx, identity, token.ExpiresAt); err != nil {
			s.logger.Warn("failed to publish token refreshed event", "identity", identity, "error", err)
		}
	}

	return "Token refreshed", nil
}

// CheckHumanityStatus returns the identity's unexpired token
func (s *VerificationService) CheckHumanityStatus(ctx context.Context, identity string) (*core.HumanityToken, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	return s.tokens.Status(ctx, identity, s.clock.Now())
}

// IssueCredential exports the identity's unexpired token as a signed credential
func (s *VerificationService) IssueCredential(ctx context.Context, identity string) (string, *core.HumanityToken, error) {
	token, err := s.CheckHumanityStatus(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	credential, err := s.tokenizer.TokenToCredential(*token)
	if err != nil {
		return "", nil, err
	}
	return credential, token, nil
}

// VerifyCredential checks a credential's signature and expiry
func (s *VerificationService) VerifyCredential(ctx context.Context, credential string) (*core.HumanityToken, error) {
	return s.tokenizer.CredentialToToken(credential)
}

var _ humangate.Verifier = (*VerificationService)(nil)
