package session

import (
	"sync"
	"time"
)

type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store maps user ids to their live session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start replaces any existing session of userID with a fresh one.
func (s *Store) Start(userID string) *Session {
	fresh := newSession(userID, s.now)

	s.mu.Lock()
	old := s.sessions[userID]
	s.sessions[userID] = fresh
	s.mu.Unlock()

	if old != nil {
		old.End()
	}
	return fresh
}

func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		sess.touch()
	}
	return sess, ok
}

func (s *Store) GetOrStart(userID string) *Session {
	if sess, ok := s.Get(userID); ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := newSession(userID, s.now)
	s.sessions[userID] = sess
	return sess
}

func (s *Store) End(userID string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		sess.End()
	}
	return ok
}

// Sweep ends every session last seen before idleBefore and returns how many
// were removed.
func (s *Store) Sweep(idleBefore time.Time) int {
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(idleBefore) && !sess.Generating() {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.End()
	}
	return len(expired)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
