package session

import (
	"sync"
	"time"
)

// TTL after which a session is treated as nonexistent on the next read.
// Expiry is lazy; there is no background sweep.
const TTL = 3600 * time.Second

// Clock provides the current time so TTL behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Store is a keyed in-memory session store, one live session per owner.
// Starting a new session for an owner replaces the old one.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	clock    Clock
}

// NewStore creates a Store with the system clock and the default TTL.
func NewStore() *Store {
	return NewStoreWithClock(systemClock{}, TTL)
}

// NewStoreWithClock creates a Store with a custom clock and TTL for
// testing.
func NewStoreWithClock(clock Clock, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Get returns the owner's live session. A session older than the TTL is
// evicted and reported absent.
func (st *Store) Get(ownerID string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[ownerID]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if st.clock.Now().Sub(s.CreatedAt) > st.ttl {
		st.Delete(ownerID)
		return nil, false
	}
	return s, true
}

// Put stores a session, replacing any existing one for the same owner.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.OwnerID] = s
}

// Delete removes the owner's session.
func (st *Store) Delete(ownerID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, ownerID)
}

// Clock exposes the store's clock so callers stamp sessions with the
// same time source used for expiry.
func (st *Store) Clock() Clock {
	return st.clock
}
