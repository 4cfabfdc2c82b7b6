package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/layer-3/humangate/adapters/store"
	"github.com/layer-3/humangate/adapters/tokenizer"
	"github.com/layer-3/humangate/core"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	verification *VerificationService
	posts        *PostService
	store        *store.MemoryStore
	clock        *clock.Mock
	events       *recordingPublisher
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	st := store.NewMemoryStore()
	events := &recordingPublisher{}

	opts = append([]Option{
		WithClock(mock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithLocks(NewIdentityLocks()),
	}, opts...)

	return &testEnv{
		verification: NewVerificationService(st, tokenizer.NewJWTTokenizer(key, mock), events, opts...),
		posts:        NewPostService(st, events, opts...),
		store:        st,
		clock:        mock,
		events:       events,
	}
}

// completeChallenges answers every catalog slot correctly
func (e *testEnv) completeChallenges(t *testing.T, identity string) {
	t.Helper()
	ctx := context.Background()

	for slot := 1; slot <= core.ChallengeSlots; slot++ {
		challenge, err := e.verification.GetChallenge(ctx, identity, slot)
		require.NoError(t, err)

		correct, err := e.verification.VerifyAnswer(ctx, identity, challenge.ID, challenge.CorrectAnswer)
		require.NoError(t, err)
		require.True(t, correct)
	}
}

// verify takes identity through the full protocol up to a minted token
func (e *testEnv) verify(t *testing.T, identity string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.verification.StartSession(ctx, identity)
	require.NoError(t, err)
	e.completeChallenges(t, identity)
	_, err = e.verification.MintProof(ctx, identity)
	require.NoError(t, err)
}

type recordedEvent struct {
	kind     string
	identity string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) record(kind, identity string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{kind: kind, identity: identity})
	return p.err
}

func (p *recordingPublisher) PublishSessionStarted(ctx context.Context, identity string, at time.Time) error {
	return p.record("session.started", identity)
}

func (p *recordingPublisher) PublishTokenMinted(ctx context.Context, identity string, expiresAt time.Time) error {
	return p.record("token.minted", identity)
}

func (p *recordingPublisher) PublishTokenRefreshed(ctx context.Context, identity string, expiresAt time.Time) error {
	return p.record("token.refreshed", identity)
}

func (p *recordingPublisher) PublishPostCreated(ctx context.Context, identity string, postID string) error {
	return p.record("post.created", identity)
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]string, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.kind)
	}
	return kinds
}
