package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/benbjohnson/clock"
	"github.com/layer-3/humangate"
	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

// PostService gates post creation on a valid humanity token
type PostService struct {
	tokens   *Tokens
	posts    ports.PostStore
	eventPub ports.EventPublisher

	clock  clock.Clock
	logger *slog.Logger
	locks  *IdentityLocks
}

// NewPostService creates a new post service. eventPub may be nil.
func NewPostService(store ports.Store, eventPub ports.EventPublisher, opts ...Option) *PostService {
	o := newOptions(opts)
	return &PostService{
		tokens:   NewTokens(store),
		posts:    store,
		eventPub: eventPub,
		clock:    o.clock,
		logger:   o.logger,
		locks:    o.locks,
	}
}

// CreatePost appends a post for identity. Token validity is checked on every
// call; without a valid token the call fails with core.ErrChallengeRequired.
func (s *PostService) CreatePost(ctx context.Context, identity, title, content string) (string, error) {
	unlock := s.locks.Lock(identity)
	defer unlock()

	now := s.clock.Now()
	valid, err := s.tokens.IsValid(ctx, identity, now)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", core.ErrChallengeRequired
	}

	title, content, err = core.NormalizePostInput(title, content)
	if err != nil {
		return "", err
	}

	seq, err := s.posts.NextPostSeq(ctx)
	if err != nil {
		return "", err
	}

	post := core.Post{
		ID:             fmt.Sprintf("post_%d_%d", now.UnixNano(), seq),
		Title:          title,
		Content:        content,
		Author:         identity,
		CreatedAt:      now.Round(0), // wall time only, so listing order matches created_at
		AuthorVerified: true,
		Seq:            seq,
	}
	if err := s.posts.AppendPost(ctx, post); err != nil {
		return "", err
	}

	s.logger.Info("post created", "identity", identity, "post_id", post.ID)
	if s.eventPub != nil {
		if err := s.eventPub.PublishPostCreated(ctx, identity, post.ID); err != nil {
			s.logger.Warn("failed to publish post created event", "identity", identity, "error", err)
		}
	}

	return post.ID, nil
}

// GetAllPosts returns every post, newest first. Posts created at the same
// instant are ordered by creation sequence.
func (s *PostService) GetAllPosts(ctx context.Context) ([]core.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].Seq > posts[j].Seq
	})
	return posts, nil
}

var _ humangate.Poster = (*PostService)(nil)
