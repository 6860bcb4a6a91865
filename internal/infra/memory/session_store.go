package memory

import (
	"sync"

	"trivia-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository,
// keyed by client ID. Starting a new quiz replaces the previous session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.QuizSession),
	}
}

func (s *SessionStore) Put(clientID string, session *app.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[clientID] = session
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
}
