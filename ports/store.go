package ports

import (
	"context"
	"time"

	"github.com/layer-3/humangate/core"
)

// SessionStore keeps one verification session per identity
type SessionStore interface {
	// GetSession returns core.ErrNoActiveSession when the identity has no session
	GetSession(ctx context.Context, identity string) (*core.Session, error)
	PutSession(ctx context.Context, session *core.Session) error
}

// TokenStore keeps one humanity token per identity
type TokenStore interface {
	// GetToken returns core.ErrTokenNotFound when the identity has no token
	GetToken(ctx context.Context, identity string) (*core.HumanityToken, error)
	PutToken(ctx context.Context, token core.HumanityToken) error
}

// VerifiedStore records identities that have ever completed verification
type VerifiedStore interface {
	// MarkVerified stores at only if the identity was not recorded before
	MarkVerified(ctx context.Context, identity string, at time.Time) error
	VerifiedAt(ctx context.Context, identity string) (time.Time, bool, error)
}

// PostStore is the append-only post collection
type PostStore interface {
	// NextPostSeq returns a sequence number unique across the store
	NextPostSeq(ctx context.Context) (uint64, error)
	AppendPost(ctx context.Context, post core.Post) error
	// ListPosts returns posts in insertion order
	ListPosts(ctx context.Context) ([]core.Post, error)
}

// Store bundles all collections owned by the gate
type Store interface {
	SessionStore
	TokenStore
	VerifiedStore
	PostStore
}
