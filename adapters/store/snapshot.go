package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/layer-3/humangate/core"
)

const (
	snapshotVersion = 1

	// largest collection size the cbor decoder accepts
	maxSnapshotElements = 2147483647
)

// snapshot is the on-disk image of a MemoryStore
type snapshot struct {
	Version  int                           `cbor:"version"`
	Sessions map[string]core.Session       `cbor:"sessions"`
	Tokens   map[string]core.HumanityToken `cbor:"tokens"`
	Verified map[string]time.Time          `cbor:"verified"`
	Posts    []core.Post                   `cbor:"posts"`
	PostSeq  uint64                        `cbor:"post_seq"`
}

var snapshotEncMode = func() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Posts are append-only and identities are never evicted, so a long-lived
// store grows past the decoder's default collection limits.
var snapshotDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		MaxArrayElements: maxSnapshotElements,
		MaxMapPairs:      maxSnapshotElements,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// WriteSnapshot encodes the whole store to w
func (s *MemoryStore) WriteSnapshot(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		Version:  snapshotVersion,
		Sessions: s.sessions,
		Tokens:   s.tokens,
		Verified: s.verified,
		Posts:    s.posts,
		PostSeq:  s.postSeq,
	}

	if err := snapshotEncMode.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot replaces the store contents with a snapshot read from r
func (s *MemoryStore) ReadSnapshot(r io.Reader) error {
	var snap snapshot
	if err := snapshotDecMode.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = snap.Sessions
	s.tokens = snap.Tokens
	s.verified = snap.Verified
	s.posts = snap.Posts
	s.postSeq = snap.PostSeq

	if s.sessions == nil {
		s.sessions = make(map[string]core.Session)
	}
	if s.tokens == nil {
		s.tokens = make(map[string]core.HumanityToken)
	}
	if s.verified == nil {
		s.verified = make(map[string]time.Time)
	}
	return nil
}

// SaveSnapshot atomically writes the store to path
func (s *MemoryStore) SaveSnapshot(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.WriteSnapshot(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores the store from path. A missing file is not an error.
func (s *MemoryStore) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return s.ReadSnapshot(f)
}
