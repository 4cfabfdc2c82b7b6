package service

import "sync"

// IdentityLocks hands out one mutex per identity. Entries are dropped once
// no caller holds or waits for them.
type IdentityLocks struct {
	mu    sync.Mutex
	locks map[string]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

// NewIdentityLocks creates an empty lock set
func NewIdentityLocks() *IdentityLocks {
	return &IdentityLocks{locks: make(map[string]*identityLock)}
}

// Lock blocks until the identity's lock is held and returns its release func
func (l *IdentityLocks) Lock(identity string) func() {
	l.mu.Lock()
	lock, ok := l.locks[identity]
	if !ok {
		lock = &identityLock{}
		l.locks[identity] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, identity)
		}
		l.mu.Unlock()
	}
}

func (l *IdentityLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
