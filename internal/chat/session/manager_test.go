package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(), logger.New("session_test", "", ""))
}

func TestExchangeAppendsOrderedPairs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	sess, err := m.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	const turns = 5
	for i := 0; i < turns; i++ {
		q := fmt.Sprintf("question %d", i)
		a := fmt.Sprintf("answer %d", i)
		if err := m.Exchange(ctx, sess.SessionID, q, a); err != nil {
			t.Fatalf("Exchange %d failed: %v", i, err)
		}
	}

	history, err := m.History(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2*turns {
		t.Fatalf("expected %d messages, got %d", 2*turns, len(history))
	}
	for i := 0; i < turns; i++ {
		if history[2*i].Role != models.SpeakerUser {
			t.Errorf("message %d: expected role user, got %s", 2*i, history[2*i].Role)
		}
		if history[2*i+1].Role != models.SpeakerAssistant {
			t.Errorf("message %d: expected role assistant, got %s", 2*i+1, history[2*i+1].Role)
		}
		wantQ := fmt.Sprintf("question %d", i)
		if history[2*i].Content != wantQ {
			t.Errorf("message %d: expected %q, got %q", 2*i, wantQ, history[2*i].Content)
		}
	}
}

func TestConcurrentExchangesNeverInterleavePairs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	sess, err := m.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("q-%d", i)
			if err := m.Exchange(ctx, sess.SessionID, q, "re:"+q); err != nil {
				t.Errorf("Exchange failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history, err := m.History(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2*workers {
		t.Fatalf("expected %d messages, got %d", 2*workers, len(history))
	}
	// Every question must be immediately followed by its own answer.
	for i := 0; i < len(history); i += 2 {
		q := history[i]
		a := history[i+1]
		if q.Role != models.SpeakerUser || a.Role != models.SpeakerAssistant {
			t.Fatalf("pair at %d has roles %s/%s", i, q.Role, a.Role)
		}
		if a.Content != "re:"+q.Content {
			t.Errorf("pair at %d interleaved: question %q answered by %q", i, q.Content, a.Content)
		}
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	docID := "doc-1"
	first, err := m.StartSession(ctx, &docID)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	second, err := m.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Fatal("two sessions share an id")
	}

	if err := m.Exchange(ctx, first.SessionID, "hello", "hi"); err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}

	otherHistory, err := m.History(ctx, second.SessionID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(otherHistory) != 0 {
		t.Errorf("expected empty history in second session, got %d messages", len(otherHistory))
	}

	got, err := m.Get(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DocumentID == nil || *got.DocumentID != docID {
		t.Errorf("expected document id %q, got %v", docID, got.DocumentID)
	}
}

func TestUnknownSessionReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	if _, err := m.Get(ctx, "no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := m.History(ctx, "no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("History: expected ErrNotFound, got %v", err)
	}
	if err := m.Exchange(ctx, "no-such-session", "q", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Exchange: expected ErrNotFound, got %v", err)
	}
	if err := m.Purge(ctx, "no-such-session"); err != nil {
		t.Errorf("Purge of unknown session should be a no-op, got %v", err)
	}
}

func TestPurgeRemovesSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	sess, err := m.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := m.Purge(ctx, sess.SessionID); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if _, err := m.Get(ctx, sess.SessionID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after purge, got %v", err)
	}
}
