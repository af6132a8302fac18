package memory

import (
	"context"
	"sync"

	"quiz-leaderboard-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*app.Session
	snapshots map[string]app.SessionSnapshot
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*app.Session),
		snapshots: make(map[string]app.SessionSnapshot),
	}
}

func (s *SessionStore) GetOrCreate(_ context.Context, participantKey string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[participantKey]; ok {
		return session
	}
	session := app.NewSession(participantKey)
	s.sessions[participantKey] = session
	return session
}

func (s *SessionStore) Get(_ context.Context, participantKey string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[participantKey]
	return session, ok
}

func (s *SessionStore) Save(_ context.Context, session *app.Session) error {
	snap := session.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Participant] = snap
	return nil
}

// LastSnapshot returns the most recently saved snapshot for a participant.
func (s *SessionStore) LastSnapshot(participantKey string) (app.SessionSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[participantKey]
	return snap, ok
}

func (s *SessionStore) Delete(_ context.Context, participantKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, participantKey)
	delete(s.snapshots, participantKey)
}
