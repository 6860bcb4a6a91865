package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions themselves stay in-process (the state machine holds callbacks
// and a mutex); Redis keeps a liveness marker per client so operators can
// see active runs and expired ones fall away with the TTL.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.QuizSession
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.QuizSession),
	}
}

func (s *SessionStore) Put(clientID string, session *app.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(clientID), "1", s.ttl).Err()
}

func (s *SessionStore) Get(clientID string) (*app.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[clientID]
	return session, ok
}

func (s *SessionStore) Delete(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, clientID)
	_ = s.client.Del(context.Background(), s.key(clientID)).Err()
}

func (s *SessionStore) key(clientID string) string {
	return "quiz:session:" + clientID
}
