package session

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/censo/censobot/internal/domain/search"
)

func newTestStore(start time.Time) (*Store, *time.Time) {
	current := start
	s := NewStore()
	s.now = func() time.Time { return current }
	return s, &current
}

func someCandidates(n int) []search.Candidate {
	out := make([]search.Candidate, n)
	for i := range out {
		out[i] = search.Candidate{DisplayRank: i + 1}
	}
	return out
}

func TestPutThenGet(t *testing.T) {
	s, _ := newTestStore(time.Now())
	owner := uuid.New()
	s.Put("!room:hs", owner, someCandidates(3))

	st := s.Get("!room:hs")
	if st == nil {
		t.Fatal("expected pending state")
	}
	if st.OwnerUserID != owner || len(st.Candidates) != 3 {
		t.Fatal("state does not match what was stored")
	}
	if !st.ExpiresAt.Equal(st.CreatedAt.Add(TTL)) {
		t.Fatal("expiry must be creation time plus TTL")
	}
}

func TestGetExpired(t *testing.T) {
	s, clock := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(1))

	*clock = clock.Add(TTL + time.Second)
	if s.Get("!room:hs") != nil {
		t.Fatal("expired state must read as absent")
	}
	// lazy expiry removed the entry; consume sees nothing either
	if s.Consume("!room:hs") != nil {
		t.Fatal("expired state must not be consumable")
	}
}

func TestGetAtExactExpiry(t *testing.T) {
	s, clock := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(1))

	*clock = clock.Add(TTL)
	if s.Get("!room:hs") != nil {
		t.Fatal("state must be expired at exactly expires_at")
	}
}

func TestPutReplaces(t *testing.T) {
	s, _ := newTestStore(time.Now())
	first := uuid.New()
	second := uuid.New()
	s.Put("!room:hs", first, someCandidates(2))
	s.Put("!room:hs", second, someCandidates(4))

	st := s.Get("!room:hs")
	if st == nil || st.OwnerUserID != second || len(st.Candidates) != 4 {
		t.Fatal("second search must fully replace the first")
	}
}

func TestConsumeIsOneShot(t *testing.T) {
	s, _ := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(2))

	if s.Consume("!room:hs") == nil {
		t.Fatal("first consume should return the state")
	}
	if s.Consume("!room:hs") != nil {
		t.Fatal("second consume must behave as no pending search")
	}
	if s.Get("!room:hs") != nil {
		t.Fatal("consumed state must be gone")
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	s, _ := newTestStore(time.Now())
	s.Put("!a:hs", uuid.New(), someCandidates(1))
	s.Put("!b:hs", uuid.New(), someCandidates(1))

	s.Consume("!a:hs")
	if s.Get("!b:hs") == nil {
		t.Fatal("consuming one room must not touch another")
	}
}

func TestRestoreAfterFailedSelection(t *testing.T) {
	s, _ := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(2))

	st := s.Consume("!room:hs")
	s.Restore(st)
	if s.Get("!room:hs") != st {
		t.Fatal("restored state should be readable again")
	}
}

func TestRestoreDoesNotClobberNewerSearch(t *testing.T) {
	s, _ := newTestStore(time.Now())
	owner := uuid.New()
	s.Put("!room:hs", owner, someCandidates(2))
	st := s.Consume("!room:hs")

	replacement := uuid.New()
	s.Put("!room:hs", replacement, someCandidates(5))
	s.Restore(st)

	got := s.Get("!room:hs")
	if got == nil || got.OwnerUserID != replacement {
		t.Fatal("restore must not replace a newer pending search")
	}
}

func TestRestoreExpired(t *testing.T) {
	s, clock := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(1))
	st := s.Consume("!room:hs")

	*clock = clock.Add(TTL + time.Minute)
	s.Restore(st)
	if s.Get("!room:hs") != nil {
		t.Fatal("restoring an expired state must be a no-op")
	}
}

func TestDrop(t *testing.T) {
	s, _ := newTestStore(time.Now())
	s.Put("!room:hs", uuid.New(), someCandidates(1))
	s.Drop("!room:hs")
	if s.Get("!room:hs") != nil {
		t.Fatal("dropped state must be gone")
	}
}
