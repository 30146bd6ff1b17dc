package session

import (
	"sync"
	"time"
)

// Await marks which input the bot expects next from a user.
type Await string

const (
	AwaitNone Await = ""

	AwaitBroadcastText     Await = "broadcast_text"
	AwaitBroadcastSchedule Await = "broadcast_schedule"

	AwaitABVariantA Await = "ab_variant_a"
	AwaitABVariantB Await = "ab_variant_b"

	AwaitContentTitle      Await = "content_title"
	AwaitContentPayload    Await = "content_payload"
	AwaitContentThresholds Await = "content_thresholds"

	AwaitAddAdmin Await = "add_admin"
	AwaitBanUser  Await = "ban_user"
)

// BroadcastDraft accumulates a campaign composed step by step.
type BroadcastDraft struct {
	Text         string
	MediaType    string
	MediaFileID  string
	Selector     string
	Personalized bool
}

// ABDraft accumulates a two-variant test under composition.
type ABDraft struct {
	VariantA string
	VariantB string
}

// ContentDraft accumulates a reward content item under composition.
type ContentDraft struct {
	Title   string
	Payload string
}

type Session struct {
	Await Await

	Broadcast BroadcastDraft
	AB        ABDraft
	Content   ContentDraft
}

type entry struct {
	sess    *Session
	touched time.Time
}

// Store keeps per-user wizard state in memory. Entries idle past the TTL are
// dropped, so an abandoned wizard silently resets.
type Store struct {
	mu  sync.Mutex
	m   map[int64]*entry
	ttl time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{m: map[int64]*entry{}, ttl: ttl}
}

// Get returns the user's session, creating a fresh one when absent or
// expired. Every access renews the TTL.
func (s *Store) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	e, ok := s.m[userID]
	if !ok || now.Sub(e.touched) > s.ttl {
		e = &entry{sess: &Session{}}
		s.m[userID] = e
	}
	e.touched = now
	return e.sess
}

// Clear resets the user's wizard state entirely.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// Sweep drops all expired entries and reports how many went away.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var n int
	for id, e := range s.m {
		if now.Sub(e.touched) > s.ttl {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
