package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FinSight/internal/chat/session"
	"FinSight/internal/config"
	"FinSight/internal/document"
	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

// fakeDocuments serves document records from a map; ProcessDocument marks the
// record processed with whatever content the test staged in pendingText.
type fakeDocuments struct {
	docs        map[string]*models.Document
	pendingText map[string]string
}

func (f *fakeDocuments) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocuments) ProcessDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	if text, ok := f.pendingText[id]; ok {
		doc.Text = text
	}
	doc.Status = models.DocumentProcessed
	return doc, nil
}

// fakeCapability returns a canned reply after an optional delay, honoring the
// context deadline like a real client would.
type fakeCapability struct {
	reply string
	delay time.Duration
}

func (f *fakeCapability) Respond(ctx context.Context, history []models.ChatMessage, docContext string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, nil
}

func newTestService(t *testing.T, docs DocumentProvider, capability Capability, timeout string) *Service {
	t.Helper()
	log := logger.New("chat_test", "", "")
	mgr := session.NewManager(session.NewMemoryStore(), log)
	svc, err := NewService(config.ChatConfig{CapabilityTimeout: timeout}, mgr, docs, capability, "gemini", log)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func processedDoc(id, text string) *models.Document {
	return &models.Document{
		ID:       id,
		FileName: id + ".pdf",
		Status:   models.DocumentProcessed,
		Text:     text,
	}
}

func TestChatWithDocumentAnswersIdentifierQuestion(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocuments{docs: map[string]*models.Document{
		"doc-1": processedDoc("doc-1", "LUMINIS CAPITAL XS2761230684 1,000 99.50 99,500.00"),
	}}
	svc := newTestService(t, docs, &fakeCapability{reply: "unused"}, "1s")

	result, err := svc.ChatWithDocument(ctx, "doc-1", "", "What is the ISIN for Luminis Capital?")
	if err != nil {
		t.Fatalf("ChatWithDocument failed: %v", err)
	}

	want := "The ISIN for LUMINIS CAPITAL is XS2761230684."
	if result.Response != want {
		t.Errorf("response = %q, want %q", result.Response, want)
	}
	if result.Provider != ProviderSecurities {
		t.Errorf("provider = %q, want %q", result.Provider, ProviderSecurities)
	}
	if result.SessionID == "" {
		t.Fatal("expected a session id for follow-up turns")
	}

	history, err := svc.GetChatHistory(ctx, result.SessionID)
	if err != nil {
		t.Fatalf("GetChatHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != models.SpeakerUser || history[1].Role != models.SpeakerAssistant {
		t.Errorf("unexpected roles: %s, %s", history[0].Role, history[1].Role)
	}
}

func TestChatWithUnknownDocument(t *testing.T) {
	svc := newTestService(t, &fakeDocuments{docs: map[string]*models.Document{}}, &fakeCapability{}, "1s")

	_, err := svc.ChatWithDocument(context.Background(), "missing", "", "What ISINs are there?")
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected document.ErrNotFound, got %v", err)
	}
}

// An unprocessed document produces a normal answer, not an error: the user is
// told to retry after processing.
func TestChatWithUnprocessedDocument(t *testing.T) {
	docs := &fakeDocuments{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", Status: models.DocumentUploaded},
	}}
	svc := newTestService(t, docs, &fakeCapability{}, "1s")

	result, err := svc.ChatWithDocument(context.Background(), "doc-1", "", "What ISINs are there?")
	if err != nil {
		t.Fatalf("ChatWithDocument failed: %v", err)
	}
	if !strings.Contains(result.Response, "has not been processed") {
		t.Errorf("unexpected response: %q", result.Response)
	}
	if result.Provider != ProviderSystem {
		t.Errorf("provider = %q, want %q", result.Provider, ProviderSystem)
	}
}

func TestGeneralChatUsesCapability(t *testing.T) {
	svc := newTestService(t, &fakeDocuments{}, &fakeCapability{reply: "Hello! How can I help?"}, "1s")

	result, err := svc.GeneralChat(context.Background(), "", "Hi there")
	if err != nil {
		t.Fatalf("GeneralChat failed: %v", err)
	}
	if result.Response != "Hello! How can I help?" {
		t.Errorf("response = %q", result.Response)
	}
	if result.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", result.Provider)
	}
}

func TestCapabilityTimeoutRecoveredToAnswer(t *testing.T) {
	svc := newTestService(t, &fakeDocuments{}, &fakeCapability{reply: "late", delay: 500 * time.Millisecond}, "50ms")

	result, err := svc.GeneralChat(context.Background(), "", "Hi there")
	if err != nil {
		t.Fatalf("GeneralChat failed: %v", err)
	}
	if !strings.Contains(result.Response, "temporarily unavailable") {
		t.Errorf("response = %q", result.Response)
	}
	if result.Provider != ProviderSystem {
		t.Errorf("provider = %q, want %q", result.Provider, ProviderSystem)
	}
}

func TestAskUnknownSession(t *testing.T) {
	svc := newTestService(t, &fakeDocuments{}, &fakeCapability{}, "1s")

	_, err := svc.Ask(context.Background(), "no-such-session", "hello?")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected session.ErrNotFound, got %v", err)
	}
}

func TestAskContinuesExistingSession(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocuments{docs: map[string]*models.Document{
		"doc-1": processedDoc("doc-1", "LUMINIS CAPITAL XS2761230684 1,000 99.50 99,500.00"),
	}}
	svc := newTestService(t, docs, &fakeCapability{reply: "unused"}, "1s")

	first, err := svc.ChatWithDocument(ctx, "doc-1", "", "What is the ISIN for Luminis Capital?")
	if err != nil {
		t.Fatalf("ChatWithDocument failed: %v", err)
	}

	second, err := svc.Ask(ctx, first.SessionID, "How many shares of Luminis Capital?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session changed: %q vs %q", second.SessionID, first.SessionID)
	}
	want := "The quantity for LUMINIS CAPITAL is 1000."
	if second.Response != want {
		t.Errorf("response = %q, want %q", second.Response, want)
	}

	history, err := svc.GetChatHistory(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("GetChatHistory failed: %v", err)
	}
	if len(history) != 4 {
		t.Errorf("expected 4 messages, got %d", len(history))
	}
}

func TestQuerySecuritiesWithoutSession(t *testing.T) {
	svc := newTestService(t, &fakeDocuments{}, &fakeCapability{}, "1s")
	store := holdingsStore()

	answer := svc.QuerySecurities(store, "What ISINs are in this document?")
	if !strings.Contains(answer.Text, "XS2761230684") || !strings.Contains(answer.Text, "XS2631782468") {
		t.Errorf("unexpected answer: %q", answer.Text)
	}

	answer = svc.QuerySecurities(store, "Tell me a joke.")
	if answer.Provider != ProviderSystem {
		t.Errorf("unrecognized question should get the fixed system answer, got provider %q", answer.Provider)
	}
}

// Reprocessing publishes a fresh store; later questions see the new content.
func TestReprocessDocumentReplacesEntityStore(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocuments{
		docs: map[string]*models.Document{
			"doc-1": processedDoc("doc-1", "LUMINIS CAPITAL XS2761230684 1,000 99.50 99,500.00"),
		},
		pendingText: map[string]string{
			"doc-1": "AURORA GLOBAL FUND XS2631782468 500 101.25 50,625.00",
		},
	}
	svc := newTestService(t, docs, &fakeCapability{reply: "unused"}, "1s")

	first, err := svc.ChatWithDocument(ctx, "doc-1", "", "What ISINs are in this document?")
	if err != nil {
		t.Fatalf("ChatWithDocument failed: %v", err)
	}
	if !strings.Contains(first.Response, "XS2761230684") {
		t.Fatalf("unexpected response: %q", first.Response)
	}

	store, err := svc.ReprocessDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ReprocessDocument failed: %v", err)
	}
	if len(store.Securities) != 1 || !store.Securities[0].HasIdentifier() || *store.Securities[0].Identifier != "XS2631782468" {
		t.Fatalf("unexpected reprocessed store: %+v", store.Securities)
	}

	second, err := svc.Ask(ctx, first.SessionID, "What ISINs are in this document?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if !strings.Contains(second.Response, "XS2631782468") || strings.Contains(second.Response, "XS2761230684") {
		t.Errorf("expected only the new identifier, got %q", second.Response)
	}
}
