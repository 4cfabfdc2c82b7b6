package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

// Tokens implements humanity token issuance and lazy expiry checks
type Tokens struct {
	store ports.TokenStore
}

// NewTokens creates the token component
func NewTokens(store ports.TokenStore) *Tokens {
	return &Tokens{store: store}
}

// Mint overwrites the identity's token with one valid from now.
// Eligibility is the caller's concern.
func (t *Tokens) Mint(ctx context.Context, identity string, now time.Time) (core.HumanityToken, error) {
	token := core.NewHumanityToken(identity, now)
	if err := t.store.PutToken(ctx, token); err != nil {
		return core.HumanityToken{}, fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Status returns the token if it is still valid at now, otherwise
// core.ErrTokenNotFound or core.ErrTokenExpired
func (t *Tokens) Status(ctx context.Context, identity string, now time.Time) (*core.HumanityToken, error) {
	token, err := t.store.GetToken(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !token.ValidAt(now) {
		return nil, core.ErrTokenExpired
	}
	return token, nil
}

// IsValid reports whether the identity holds a token that has not expired at now
func (t *Tokens) IsValid(ctx context.Context, identity string, now time.Time) (bool, error) {
	_, err := t.Status(ctx, identity, now)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, core.ErrTokenNotFound), errors.Is(err, core.ErrTokenExpired):
		return false, nil
	default:
		return false, err
	}
}
