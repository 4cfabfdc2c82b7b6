package ports

import (
	"context"
	"time"
)

// EventPublisher publishes verification events to other services
type EventPublisher interface {
	PublishSessionStarted(ctx context.Context, identity string, at time.Time) error
	PublishTokenMinted(ctx context.Context, identity string, expiresAt time.Time) error
	PublishTokenRefreshed(ctx context.Context, identity string, expiresAt time.Time) error
	PublishPostCreated(ctx context.Context, identity string, postID string) error
}
