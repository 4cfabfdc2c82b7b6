package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

// Sessions implements the per-identity session operations on top of a store.
// Callers are expected to hold the identity's lock.
type Sessions struct {
	store    ports.SessionStore
	verified ports.VerifiedStore
}

// NewSessions creates the session component
func NewSessions(store ports.SessionStore, verified ports.VerifiedStore) *Sessions {
	return &Sessions{store: store, verified: verified}
}

// Start creates a fresh session, replacing any previous one. Identities that
// have ever been verified cannot start again, whatever their token state.
func (s *Sessions) Start(ctx context.Context, identity string, now time.Time) (*core.Session, error) {
	_, verified, err := s.verified.VerifiedAt(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to check verification record: %w", err)
	}
	if verified {
		return nil, core.ErrAlreadyVerified
	}

	session := core.NewSession(identity, now)
	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// Get returns the identity's session or core.ErrNoActiveSession
func (s *Sessions) Get(ctx context.Context, identity string) (*core.Session, error) {
	return s.store.GetSession(ctx, identity)
}

// SetCurrentChallenge binds challenge as the session's outstanding challenge
func (s *Sessions) SetCurrentChallenge(ctx context.Context, identity string, challenge core.Challenge) error {
	session, err := s.store.GetSession(ctx, identity)
	if err != nil {
		return err
	}

	session.CurrentChallenge = &challenge
	if err := s.store.PutSession(ctx, session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// RecordAnswer grades answer against the current challenge and credits the
// session on a match. Wrong answers leave the session untouched.
func (s *Sessions) RecordAnswer(ctx context.Context, identity, challengeID string, answer uint8, clearOnCorrect bool) (bool, error) {
	session, err := s.store.GetSession(ctx, identity)
	if err != nil {
		return false, err
	}

	correct, err := session.RecordAnswer(challengeID, answer, clearOnCorrect)
	if err != nil || !correct {
		return false, err
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return false, fmt.Errorf("failed to store session: %w", err)
	}
	return true, nil
}

// CompletedCount returns the number of credited answers, 0 without a session
func (s *Sessions) CompletedCount(ctx context.Context, identity string) (uint8, error) {
	session, err := s.store.GetSession(ctx, identity)
	if errors.Is(err, core.ErrNoActiveSession) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return session.ChallengesCompleted, nil
}

// Complete stamps the session's completion time the first time it is used
// to mint a token
func (s *Sessions) Complete(ctx context.Context, session *core.Session, now time.Time) error {
	if session.CompletedAt != nil {
		return nil
	}

	session.MarkCompleted(now)
	if err := s.store.PutSession(ctx, session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
