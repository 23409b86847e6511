package conversation

import (
	"time"

	"vkinder/apps/bot/internal/matching"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Session is the per-user UI state that does not need to survive a restart.
type Session struct {
	// Candidate is the profile currently on screen.
	Candidate *matching.Candidate
	// Favorites are the candidate ids in the order of the last favorites list, addressed by number.
	Favorites []int64
}

// SessionStore keeps sessions in a bounded LRU; entries idle longer than ttl are evicted.
// Entries are mutated in place, so one user must only be handled by one goroutine at a time.
type SessionStore struct {
	lru *expirable.LRU[int64, *Session]
}

// NewSessionStore builds a store holding at most size sessions.
func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	if size <= 0 {
		size = 10000
	}
	return &SessionStore{lru: expirable.NewLRU[int64, *Session](size, nil, ttl)}
}

// Get returns the session of userID, creating an empty one when absent.
func (s *SessionStore) Get(userID int64) *Session {
	if sess, ok := s.lru.Get(userID); ok {
		return sess
	}
	sess := &Session{}
	s.lru.Add(userID, sess)
	return sess
}

// Peek returns the session without creating it.
func (s *SessionStore) Peek(userID int64) (*Session, bool) {
	return s.lru.Get(userID)
}

// Drop forgets userID.
func (s *SessionStore) Drop(userID int64) {
	s.lru.Remove(userID)
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	return s.lru.Len()
}
