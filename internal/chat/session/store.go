package session

import (
	"context"
	"errors"

	"FinSight/internal/models"
)

// ErrNotFound is returned when a session id is unknown to the store.
var ErrNotFound = errors.New("session not found")

// Store persists chat sessions and their append-only message logs. Message
// order is strictly chronological; implementations must never remove or
// reorder entries. Retention and eviction are a store policy, not the
// manager's concern.
type Store interface {
	// Create persists a new session. The session id must be unique.
	Create(ctx context.Context, session *models.ChatSession) error

	// Get returns the session with its full message log, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*models.ChatSession, error)

	// Append adds messages to the end of the session's log in the given
	// order, atomically: a reader never observes a partial append.
	Append(ctx context.Context, sessionID string, messages ...models.ChatMessage) error

	// History returns the session's messages in chronological order.
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// Purge removes a session and its log. Purging an unknown session is a
	// no-op.
	Purge(ctx context.Context, sessionID string) error
}
