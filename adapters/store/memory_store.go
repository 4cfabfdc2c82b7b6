package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/humangate/core"
	"github.com/layer-3/humangate/ports"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Expired tokens are never swept; expiry is evaluated by readers.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]core.Session
	tokens   map[string]core.HumanityToken
	verified map[string]time.Time
	posts    []core.Post
	postSeq  uint64
}

var _ ports.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]core.Session),
		tokens:   make(map[string]core.HumanityToken),
		verified: make(map[string]time.Time),
	}
}

// GetSession returns a copy of the identity's session
func (s *MemoryStore) GetSession(ctx context.Context, identity string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[identity]
	if !ok {
		return nil, core.ErrNoActiveSession
	}
	return copySession(session), nil
}

// PutSession replaces the identity's session
func (s *MemoryStore) PutSession(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Identity] = *copySession(*session)
	return nil
}

// GetToken returns the identity's token, expired or not
func (s *MemoryStore) GetToken(ctx context.Context, identity string) (*core.HumanityToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[identity]
	if !ok {
		return nil, core.ErrTokenNotFound
	}
	return &token, nil
}

// PutToken overwrites the identity's token
func (s *MemoryStore) PutToken(ctx context.Context, token core.HumanityToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Identity] = token
	return nil
}

// MarkVerified records the first verification time of an identity
func (s *MemoryStore) MarkVerified(ctx context.Context, identity string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.verified[identity]; !exists {
		s.verified[identity] = at
	}
	return nil
}

// VerifiedAt returns when the identity was first verified
func (s *MemoryStore) VerifiedAt(ctx context.Context, identity string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.verified[identity]
	return at, ok, nil
}

// NextPostSeq returns the next post sequence number
func (s *MemoryStore) NextPostSeq(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postSeq++
	return s.postSeq, nil
}

// AppendPost adds a post to the end of the collection
func (s *MemoryStore) AppendPost(ctx context.Context, post core.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, post)
	return nil
}

// ListPosts returns a copy of all posts in insertion order
func (s *MemoryStore) ListPosts(ctx context.Context) ([]core.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]core.Post, len(s.posts))
	copy(posts, s.posts)
	return posts, nil
}

func copySession(session core.Session) *core.Session {
	if session.CompletedAt != nil {
		completedAt := *session.CompletedAt
		session.CompletedAt = &completedAt
	}
	return &session
}
