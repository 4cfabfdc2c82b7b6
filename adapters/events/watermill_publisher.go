package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/humangate/ports"
)

const (
	TopicSessionStarted = "session.started"
	TopicTokenMinted    = "token.minted"
	TopicTokenRefreshed = "token.refreshed"
	TopicPostCreated    = "post.created"
)

// SessionEvent is published when an identity starts a verification session
type SessionEvent struct {
	Identity  string    `json:"identity"`
	StartedAt time.Time `json:"started_at"`
}

// TokenEvent is published when a humanity token is minted or refreshed
type TokenEvent struct {
	Identity  string    `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PostEvent is published when a verified identity creates a post
type PostEvent struct {
	Identity string `json:"identity"`
	PostID   string `json:"post_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	prefix    string
}

// NewWatermillPublisher creates a new Watermill publisher. Topics are
// namespaced with prefix, e.g. "humangate." + "token.minted".
func NewWatermillPublisher(publisher message.Publisher, prefix string) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		prefix:    prefix,
	}
}

// Topic returns the fully qualified topic name
func (p *WatermillPublisher) Topic(name string) string {
	return p.prefix + name
}

// PublishSessionStarted publishes a session started event
func (p *WatermillPublisher) PublishSessionStarted(ctx context.Context, identity string, at time.Time) error {
	return p.publish(ctx, TopicSessionStarted, identity, SessionEvent{Identity: identity, StartedAt: at})
}

// PublishTokenMinted publishes a token minted event
func (p *WatermillPublisher) PublishTokenMinted(ctx context.Context, identity string, expiresAt time.Time) error {
	return p.publish(ctx, TopicTokenMinted, identity, TokenEvent{Identity: identity, ExpiresAt: expiresAt})
}

// PublishTokenRefreshed publishes a token refreshed event
func (p *WatermillPublisher) PublishTokenRefreshed(ctx context.Context, identity string, expiresAt time.Time) error {
	return p.publish(ctx, TopicTokenRefreshed, identity, TokenEvent{Identity: identity, ExpiresAt: expiresAt})
}

// PublishPostCreated publishes a post created event
func (p *WatermillPublisher) PublishPostCreated(ctx context.Context, identity string, postID string) error {
	return p.publish(ctx, TopicPostCreated, identity, PostEvent{Identity: identity, PostID: postID})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic, identity string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set("identity", identity)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.Topic(topic), msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
