package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

// Manager owns the session lifecycle on top of a Store. It serializes writes
// per session so that a question and its answer always land in the log as an
// adjacent pair, even under concurrent callers.
type Manager struct {
	store Store
	log   *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a new Manager over the given store.
func NewManager(store Store, log *logger.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// StartSession creates a new session with a fresh id. A nil documentID starts
// a general session not bound to any document.
func (m *Manager) StartSession(ctx context.Context, documentID *string) (*models.ChatSession, error) {
	now := time.Now()
	session := &models.ChatSession{
		SessionID:  uuid.New().String(),
		DocumentID: documentID,
		Messages:   []models.ChatMessage{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	m.log.WithPayload(map[string]interface{}{"session_id": session.SessionID}).Debug("会话已创建")
	return session, nil
}

// Get returns the session with its full message log, or ErrNotFound.
func (m *Manager) Get(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	return m.store.Get(ctx, sessionID)
}

// Exchange appends the question and its answer to the session log as one
// atomic pair. Concurrent exchanges on the same session are serialized; their
// pairs never interleave.
func (m *Manager) Exchange(ctx context.Context, sessionID, question, answer string) error {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	return m.store.Append(ctx, sessionID,
		models.ChatMessage{Role: models.SpeakerUser, Content: question, Timestamp: now},
		models.ChatMessage{Role: models.SpeakerAssistant, Content: answer, Timestamp: now},
	)
}

// History returns the session's messages in chronological order.
func (m *Manager) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return m.store.History(ctx, sessionID)
}

// Purge removes a session and releases its write lock.
func (m *Manager) Purge(ctx context.Context, sessionID string) error {
	if err := m.store.Purge(ctx, sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.locks, sessionID)
	m.mu.Unlock()
	return nil
}

// sessionLock returns the mutex guarding writes to one session, creating it
// on first use.
func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}
