package session

import (
	"context"
	"sync"
	"time"

	"FinSight/internal/models"
)

// MemoryStore is an in-process Store implementation backed by a map. It is
// the default backend for tests and single-node deployments without MongoDB.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.ChatSession)}
}

// Create persists a new session.
func (s *MemoryStore) Create(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	copied.Messages = append([]models.ChatMessage(nil), session.Messages...)
	s.sessions[session.SessionID] = &copied
	return nil
}

// Get returns a copy of the session so callers cannot mutate the log.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *stored
	copied.Messages = append([]models.ChatMessage(nil), stored.Messages...)
	return &copied, nil
}

// Append adds messages to the session log atomically.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	stored.Messages = append(stored.Messages, messages...)
	stored.UpdatedAt = time.Now()
	return nil
}

// History returns the session's messages in chronological order.
func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]models.ChatMessage(nil), stored.Messages...), nil
}

// Purge removes a session; unknown ids are a no-op.
func (s *MemoryStore) Purge(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// compile-time check to ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)
