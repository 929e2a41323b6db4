// Package session keeps the bot's short-lived memory: at most one pending
// search result set per room, awaiting a numeric selection. State lives only
// in process memory. A restart abandons everything, on purpose.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/censo/censobot/internal/domain/search"
)

// TTL is how long a pending result set stays selectable.
const TTL = 5 * time.Minute

// State is one room's pending search. Candidates are immutable once stored;
// insertion order is display order.
type State struct {
	RoomID      string
	OwnerUserID uuid.UUID
	Candidates  []search.Candidate
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Store holds pending states keyed by room. Expiry is evaluated lazily at
// read time; there is no background sweep.
type Store struct {
	mu      sync.Mutex
	pending map[string]*State
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock builds a store with an injected clock, so expiry timing
// can be driven deterministically.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		pending: make(map[string]*State),
		now:     now,
	}
}

// Put creates or replaces the room's pending state with a fresh TTL. A new
// search always supersedes an unconsumed prior one.
func (s *Store) Put(roomID string, owner uuid.UUID, candidates []search.Candidate) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := &State{
		RoomID:      roomID,
		OwnerUserID: owner,
		Candidates:  candidates,
		CreatedAt:   now,
		ExpiresAt:   now.Add(TTL),
	}
	s.pending[roomID] = st
	return st
}

// Get returns the room's pending state, or nil if none exists or it has
// expired. An expired entry is removed on the spot.
func (s *Store) Get(roomID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(roomID)
}

// Consume atomically returns and clears the room's pending state, so a
// selection can only ever be applied once. Returns nil if absent or expired.
func (s *Store) Consume(roomID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.liveLocked(roomID)
	if st != nil {
		delete(s.pending, roomID)
	}
	return st
}

// Restore puts a previously consumed state back, unless a newer search
// replaced it in the meantime. Used when a selection fails validation but the
// pending state should survive for a retry.
func (s *Store) Restore(st *State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[st.RoomID]; exists {
		return
	}
	if !s.now().Before(st.ExpiresAt) {
		return
	}
	s.pending[st.RoomID] = st
}

// Drop discards the room's pending state, if any.
func (s *Store) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, roomID)
}

func (s *Store) liveLocked(roomID string) *State {
	st, ok := s.pending[roomID]
	if !ok {
		return nil
	}
	if !s.now().Before(st.ExpiresAt) {
		delete(s.pending, roomID)
		return nil
	}
	return st
}
