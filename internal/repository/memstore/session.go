// Package memstore provides an in-process session state store, used in
// tests and when running without Redis.
package memstore

import (
	"context"
	"sync"

	"github.com/hollis/supportdesk/internal/domain"
)

// SessionStore keeps per-conversation state in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

var _ domain.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]map[string]string)}
}

func (s *SessionStore) Get(_ context.Context, conversationID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.sessions[conversationID][key]
	return val, ok, nil
}

func (s *SessionStore) Set(_ context.Context, conversationID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[conversationID] == nil {
		s.sessions[conversationID] = make(map[string]string)
	}
	s.sessions[conversationID][key] = value
	return nil
}

func (s *SessionStore) Keys(_ context.Context, conversationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.sessions[conversationID]))
	for k := range s.sessions[conversationID] {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *SessionStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	return nil
}
