package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface.
// Keys never carry a Redis TTL; token expiry is evaluated by readers.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "humangate:",
	}
}

func (s *RedisStore) sessionKey(identity string) string  { return s.prefix + "session:" + identity }
func (s *RedisStore) tokenKey(identity string) string    { return s.prefix + "token:" + identity }
func (s *RedisStore) verifiedKey(identity string) string { return s.prefix + "verified:" + identity }
func (s *RedisStore) postsKey() string                   { return s.prefix + "posts" }
func (s *RedisStore) postSeqKey() string                 { return s.prefix + "posts:seq" }

// GetSession loads the identity's session
func (s *RedisStore) GetSession(ctx context.Context, identity string) (*core.Session, error) {
	var session core.Session
	if err := s.getJSON(ctx, s.sessionKey(identity), &session); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNoActiveSession
		}
		return nil, err
	}
	return &session, nil
}

// PutSession replaces the identity's session
func (s *RedisStore) PutSession(ctx context.Context, session *core.Session) error {
	return s.setJSON(ctx, s.sessionKey(session.Identity), session)
}

// GetToken loads the identity's token, expired or not
func (s *RedisStore) GetToken(ctx context.Context, identity string) (*core.HumanityToken, error) {
	var token core.HumanityToken
	if err := s.getJSON(ctx, s.tokenKey(identity), &token); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// PutToken overwrites the identity's token
func (s *RedisStore) PutToken(ctx context.Context, token core.HumanityToken) error {
	return s.setJSON(ctx, s.tokenKey(token.Identity), token)
}

// MarkVerified records the first verification time of an identity
func (s *RedisStore) MarkVerified(ctx context.Context, identity string, at time.Time) error {
	err := s.client.SetNX(ctx, s.verifiedKey(identity), at.UTC().Format(time.RFC3339Nano), 0).Err()
	if err != nil {
		return fmt.Errorf("failed to mark verified: %w: %w", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// VerifiedAt returns when the identity was first verified
func (s *RedisStore) VerifiedAt(ctx context.Context, identity string) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, s.verifiedKey(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read verified mark: %w: %w", core.ErrStoreOperationFailed, err)
	}

	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt verified mark for %s: %w", identity, err)
	}
	return at, true, nil
}

// NextPostSeq increments the shared post counter
func (s *RedisStore) NextPostSeq(ctx context.Context) (uint64, error) {
	seq, err := s.client.Incr(ctx, s.postSeqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate post id: %w: %w", core.ErrStoreOperationFailed, err)
	}
	return uint64(seq), nil
}

// AppendPost pushes a post onto the post list
func (s *RedisStore) AppendPost(ctx context.Context, post core.Post) error {
	payload, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}
	if err := s.client.RPush(ctx, s.postsKey(), payload).Err(); err != nil {
		return fmt.Errorf("failed to append post: %w: %w", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// ListPosts returns all posts in insertion order
func (s *RedisStore) ListPosts(ctx context.Context) ([]core.Post, error) {
	values, err := s.client.LRange(ctx, s.postsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w: %w", core.ErrStoreOperationFailed, err)
	}

	posts := make([]core.Post, 0, len(values))
	for _, value := range values {
		var post core.Post
		if err := json.Unmarshal([]byte(value), &post); err != nil {
			return nil, fmt.Errorf("failed to unmarshal post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v any) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return err
		}
		return fmt.Errorf("failed to get %s: %w: %w", key, core.ErrStoreOperationFailed, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w: %w", key, core.ErrStoreOperationFailed, err)
	}
	return nil
}
