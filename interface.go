// Package humangate is a human verification gate. A caller solves a short
// sequence of visual pattern challenges, earns a humanity token that is valid
// for 24 hours, and may publish posts while the token is valid.
//
// The challenge catalog is fixed: every caller gets the same puzzles, so the
// gate offers weak protection against an agent that has learned the answers.
package humangate

import (
	"context"

	"github.com/layer-3/humangate/core"
)

// Verifier represents the verification protocol as seen by a caller identity
type Verifier interface {
	// StartSession begins verification; fails for identities verified before
	StartSession(ctx context.Context, identity string) (string, error)

	// GetChallenge returns the challenge for a slot and makes it current
	GetChallenge(ctx context.Context, identity string, slot int) (core.Challenge, error)

	// VerifyAnswer grades an answer to the current challenge
	VerifyAnswer(ctx context.Context, identity, challengeID string, answer uint8) (bool, error)

	// MintProof issues a humanity token after all challenges are passed
	MintProof(ctx context.Context, identity string) (string, error)

	// RefreshToken issues a fresh token after at least one correct answer
	RefreshToken(ctx context.Context, identity string) (string, error)

	// CheckHumanityStatus returns the identity's unexpired token
	CheckHumanityStatus(ctx context.Context, identity string) (*core.HumanityToken, error)
}

// Poster represents the token gated post board
type Poster interface {
	// CreatePost publishes a post; requires a valid humanity token
	CreatePost(ctx context.Context, identity, title, content string) (string, error)

	// GetAllPosts returns every post, newest first
	GetAllPosts(ctx context.Context) ([]core.Post, error)
}
