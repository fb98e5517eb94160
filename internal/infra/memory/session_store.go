package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scheme-eligibility-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Entries idle longer than the TTL are treated as expired.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]storedSession
}

type storedSession struct {
	state     domain.FlowState
	touchedAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Put(_ context.Context, id string, state domain.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = storedSession{state: state.Clone(), touchedAt: s.clock()}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.lookupLocked(id)
	if err != nil {
		return domain.FlowState{}, err
	}
	return entry.state.Clone(), nil
}

// Update runs fn under the store lock on a copy and keeps the copy only if fn succeeds.
func (s *SessionStore) Update(_ context.Context, id string, fn func(*domain.FlowState) error) (domain.FlowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.lookupLocked(id)
	if err != nil {
		return domain.FlowState{}, err
	}
	next := entry.state.Clone()
	if err := fn(&next); err != nil {
		return domain.FlowState{}, err
	}
	s.sessions[id] = storedSession{state: next, touchedAt: s.clock()}
	return next.Clone(), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookupLocked(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// Len reports how many live sessions are stored.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.sessions {
		if _, err := s.lookupLocked(id); err == nil {
			n++
		}
	}
	return n
}

func (s *SessionStore) lookupLocked(id string) (storedSession, error) {
	entry, ok := s.sessions[id]
	if !ok {
		return storedSession{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if s.ttl > 0 && s.clock().Sub(entry.touchedAt) > s.ttl {
		delete(s.sessions, id)
		return storedSession{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return entry, nil
}
