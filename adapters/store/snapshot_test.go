package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/layer-3/humangate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()

	challenge, err := core.ChallengeDefinition(3)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	session := core.NewSession("alice", now)
	session.CurrentChallenge = &challenge
	session.ChallengesCompleted = 3
	session.MarkCompleted(now.Add(time.Minute))

	require.NoError(t, s.PutSession(ctx, session))
	require.NoError(t, s.PutToken(ctx, core.NewHumanityToken("alice", now)))
	require.NoError(t, s.MarkVerified(ctx, "alice", now))

	seq, err := s.NextPostSeq(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AppendPost(ctx, core.Post{
		ID: "post_1", Title: "Hi", Content: "Hello world", Author: "alice",
		CreatedAt: now, AuthorVerified: true, Seq: seq,
	}))
	return s
}

func assertSameContents(t *testing.T, want, got *MemoryStore) {
	t.Helper()
	ctx := context.Background()

	wantSession, err := want.GetSession(ctx, "alice")
	require.NoError(t, err)
	gotSession, err := got.GetSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, wantSession.ChallengesCompleted, gotSession.ChallengesCompleted)
	assert.True(t, wantSession.StartedAt.Equal(gotSession.StartedAt))
	require.NotNil(t, gotSession.CompletedAt)
	assert.True(t, wantSession.CompletedAt.Equal(*gotSession.CompletedAt))
	assert.Equal(t, wantSession.CurrentChallenge, gotSession.CurrentChallenge)

	gotToken, err := got.GetToken(ctx, "alice")
	require.NoError(t, err)
	wantToken, _ := want.GetToken(ctx, "alice")
	assert.True(t, wantToken.ExpiresAt.Equal(gotToken.ExpiresAt))

	_, ok, err := got.VerifiedAt(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	posts, err := got.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "post_1", posts[0].ID)

	// the sequence continues where the snapshot left off
	seq, err := got.NextPostSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := populatedStore(t)

	var buf bytes.Buffer
	require.NoError(t, original.WriteSnapshot(&buf))

	restored := NewMemoryStore()
	require.NoError(t, restored.ReadSnapshot(&buf))

	assertSameContents(t, original, restored)
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	original := populatedStore(t)

	require.NoError(t, original.SaveSnapshot(path))

	restored := NewMemoryStore()
	require.NoError(t, restored.LoadSnapshot(path))

	assertSameContents(t, original, restored)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.LoadSnapshot(filepath.Join(t.TempDir(), "missing.cbor")))

	posts, err := s.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.ReadSnapshot(bytes.NewReader([]byte{0xff, 0x00})))
}

func TestSnapshotRoundTripBeyondDefaultDecodeLimits(t *testing.T) {
	ctx := context.Background()
	original := NewMemoryStore()

	const count = 140000
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= count; i++ {
		require.NoError(t, original.AppendPost(ctx, core.Post{
			ID: fmt.Sprintf("post_%d", i), Title: "t", Content: "c", Author: "alice",
			CreatedAt: now, AuthorVerified: true, Seq: uint64(i),
		}))
	}
	for i := 0; i < count; i++ {
		require.NoError(t, original.MarkVerified(ctx, fmt.Sprintf("id-%d", i), now))
	}

	var buf bytes.Buffer
	require.NoError(t, original.WriteSnapshot(&buf))

	restored := NewMemoryStore()
	require.NoError(t, restored.ReadSnapshot(&buf))

	posts, err := restored.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, count)
	assert.Equal(t, "post_1", posts[0].ID)
	assert.Equal(t, fmt.Sprintf("post_%d", count), posts[count-1].ID)

	_, ok, err := restored.VerifiedAt(ctx, fmt.Sprintf("id-%d", count-1))
	require.NoError(t, err)
	assert.True(t, ok)
}
