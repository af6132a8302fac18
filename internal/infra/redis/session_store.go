package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-leaderboard-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map so a participant's connection keeps
//     mutating one in-process Session.
//   - Every Save writes a JSON snapshot to Redis, which lets a restarted
//     process resume an unfinished quiz through app.RestoreSession.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, participantKey string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.lookupLocked(ctx, participantKey); ok {
		return session
	}
	session := app.NewSession(participantKey)
	s.sessions[participantKey] = session
	return session
}

func (s *SessionStore) Get(ctx context.Context, participantKey string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(ctx, participantKey)
}

func (s *SessionStore) lookupLocked(ctx context.Context, participantKey string) (*app.Session, bool) {
	if session, ok := s.sessions[participantKey]; ok {
		return session, true
	}
	payload, err := s.client.Get(ctx, s.key(participantKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("load session %s: %v", participantKey, err)
		}
		return nil, false
	}
	var snap app.SessionSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		log.Printf("decode session %s: %v", participantKey, err)
		return nil, false
	}
	snap.Participant = participantKey
	session := app.RestoreSession(snap)
	s.sessions[participantKey] = session
	return session, true
}

// Save writes the session snapshot with the store's TTL.
func (s *SessionStore) Save(ctx context.Context, session *app.Session) error {
	payload, err := json.Marshal(session.Snapshot())
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.Participant()), payload, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, participantKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, participantKey)
	if err := s.client.Del(ctx, s.key(participantKey)).Err(); err != nil {
		log.Printf("delete session %s: %v", participantKey, err)
	}
}

func (s *SessionStore) key(participantKey string) string {
	return "quiz:session:" + participantKey
}
