package chat

import (
	"context"
	"errors"
	"time"

	"FinSight/internal/chat/session"
	"FinSight/internal/config"
	"FinSight/internal/document"
	"FinSight/internal/extraction"
	"FinSight/internal/models"
	"FinSight/pkg/logger"
	"FinSight/pkg/util"
)

// DocumentProvider is the slice of the document service the chat core
// depends on.
type DocumentProvider interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ProcessDocument(ctx context.Context, id string) (*models.Document, error)
}

const (
	answerUnavailable  = "The assistant is temporarily unavailable. Please try again shortly."
	answerNotProcessed = "This document has not been processed yet. Please try again once processing completes."
)

// Service is the chat core: it owns sessions, classifies questions, routes
// them to the specialized handlers or the conversational fallback, and caches
// one EntityStore per document. Entity stores are built once and replaced
// wholesale on reprocess, so concurrent readers always see a complete object.
type Service struct {
	sessions           *session.Manager
	classifier         *Classifier
	documents          DocumentProvider
	capability         Capability
	capabilityProvider string
	capabilityTimeout  time.Duration
	extractor          *extraction.Extractor
	stores             *util.LRUCache[string, *models.EntityStore]
	log                *logger.Logger
}

// NewService wires the chat core together. capabilityProvider labels
// fallback answers (for example "gemini"); timeouts and cache limits come
// from the chat section of the config.
func NewService(
	cfg config.ChatConfig,
	sessions *session.Manager,
	documents DocumentProvider,
	capability Capability,
	capabilityProvider string,
	log *logger.Logger,
) (*Service, error) {
	timeout, err := parseDurationOr(cfg.CapabilityTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDurationOr(cfg.EntityCacheTTL, time.Hour)
	if err != nil {
		return nil, err
	}
	capacity := cfg.EntityCacheCapacity
	if capacity <= 0 {
		capacity = 64
	}

	stores, err := util.NewWithConfig[string, *models.EntityStore](util.CacheConfig{
		Capacity: capacity,
		TTL:      cacheTTL,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		sessions:           sessions,
		classifier:         NewClassifier(),
		documents:          documents,
		capability:         capability,
		capabilityProvider: capabilityProvider,
		capabilityTimeout:  timeout,
		extractor:          extraction.New(log),
		stores:             stores,
		log:                log,
	}, nil
}

// ChatWithDocument answers a question about one document inside a session.
// An empty or unknown sessionID starts a fresh session bound to the document;
// the returned ChatResult carries the session id for follow-up turns.
func (s *Service) ChatWithDocument(ctx context.Context, documentID, sessionID, question string) (*models.ChatResult, error) {
	// The document must exist before a session is bound to it.
	if _, err := s.documents.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	sess, err := s.resumeOrStart(ctx, sessionID, &documentID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, sess, question)
}

// GeneralChat answers a question in a session not bound to any document. All
// questions go to the conversational capability.
func (s *Service) GeneralChat(ctx context.Context, sessionID, question string) (*models.ChatResult, error) {
	sess, err := s.resumeOrStart(ctx, sessionID, nil)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, sess, question)
}

// Ask continues an existing session. Unknown session ids return
// session.ErrNotFound; use ChatWithDocument or GeneralChat to start one.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (*models.ChatResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, sess, question)
}

// GetChatHistory returns the session's messages in chronological order.
func (s *Service) GetChatHistory(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return s.sessions.History(ctx, sessionID)
}

// QuerySecurities answers one question against an already built entity store
// without any session. Questions the classifier cannot place get a fixed
// answer instead of a capability call.
func (s *Service) QuerySecurities(store *models.EntityStore, question string) models.Answer {
	intent := s.classifier.Classify(question)
	switch intent.Kind {
	case models.IntentIdentifierLookupSpecific:
		return HandleSpecificIdentifier(store, intent)
	case models.IntentIdentifierLookupGeneral:
		return HandleGeneralIdentifier(store)
	case models.IntentTabularLookup:
		return HandleTabularLookup(store, question, intent)
	default:
		return models.Answer{
			Text:     "This question is outside the document's securities data. Start a chat session to ask it.",
			Provider: ProviderSystem,
		}
	}
}

// ReprocessDocument re-parses the document and publishes a freshly built
// entity store, replacing any cached one atomically.
func (s *Service) ReprocessDocument(ctx context.Context, documentID string) (*models.EntityStore, error) {
	doc, err := s.documents.ProcessDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tables, err := doc.Tables()
	if err != nil {
		return nil, err
	}
	store := s.extractor.Extract(doc.ID, doc.Text, tables)
	s.stores.Put(doc.ID, store)
	return store, nil
}

// resumeOrStart fetches the session when the id is known and otherwise starts
// a new one bound to documentID (nil for general chat).
func (s *Service) resumeOrStart(ctx context.Context, sessionID string, documentID *string) (*models.ChatSession, error) {
	if sessionID != "" {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}
	return s.sessions.StartSession(ctx, documentID)
}

// complete produces the answer for one question and appends the exchange to
// the session log as an atomic pair.
func (s *Service) complete(ctx context.Context, sess *models.ChatSession, question string) (*models.ChatResult, error) {
	answer, err := s.answerFor(ctx, sess, question)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Exchange(ctx, sess.SessionID, question, answer.Text); err != nil {
		return nil, err
	}
	return &models.ChatResult{
		Message:   question,
		Response:  answer.Text,
		SessionID: sess.SessionID,
		Provider:  answer.Provider,
	}, nil
}

// answerFor routes the question. Document-less sessions always use the
// conversational fallback; document sessions dispatch on the classified
// intent, with the fallback receiving the document text for unrecognized
// questions.
func (s *Service) answerFor(ctx context.Context, sess *models.ChatSession, question string) (models.Answer, error) {
	if sess.DocumentID == nil {
		return s.fallback(ctx, sess, question, "")
	}

	doc, err := s.documents.GetDocument(ctx, *sess.DocumentID)
	if err != nil {
		return models.Answer{}, err
	}

	intent := s.classifier.Classify(question)
	switch intent.Kind {
	case models.IntentIdentifierLookupSpecific, models.IntentIdentifierLookupGeneral, models.IntentTabularLookup:
		store, err := s.entityStore(doc)
		if errors.Is(err, document.ErrNotProcessed) {
			return models.Answer{Text: answerNotProcessed, Provider: ProviderSystem}, nil
		}
		if err != nil {
			return models.Answer{}, err
		}
		switch intent.Kind {
		case models.IntentIdentifierLookupSpecific:
			return HandleSpecificIdentifier(store, intent), nil
		case models.IntentIdentifierLookupGeneral:
			return HandleGeneralIdentifier(store), nil
		default:
			return HandleTabularLookup(store, question, intent), nil
		}
	case models.IntentUnrecognized:
		docContext := ""
		if doc.Status == models.DocumentProcessed {
			docContext = doc.Text
		}
		return s.fallback(ctx, sess, question, docContext)
	default:
		return s.fallback(ctx, sess, question, "")
	}
}

// entityStore returns the cached store for the document, building it on first
// use. Unprocessed documents yield document.ErrNotProcessed.
func (s *Service) entityStore(doc *models.Document) (*models.EntityStore, error) {
	if store, ok := s.stores.Get(doc.ID); ok {
		return store, nil
	}
	if doc.Status != models.DocumentProcessed {
		return nil, document.ErrNotProcessed
	}
	tables, err := doc.Tables()
	if err != nil {
		return nil, err
	}
	store := s.extractor.Extract(doc.ID, doc.Text, tables)
	s.stores.Put(doc.ID, store)
	return store, nil
}

// fallback sends the conversation to the external capability under the
// configured deadline. A deadline expiry becomes a graceful answer; other
// failures propagate.
func (s *Service) fallback(ctx context.Context, sess *models.ChatSession, question, docContext string) (models.Answer, error) {
	history := append(append([]models.ChatMessage(nil), sess.Messages...), models.ChatMessage{
		Role:      models.SpeakerUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	callCtx, cancel := context.WithTimeout(ctx, s.capabilityTimeout)
	defer cancel()

	text, err := s.capability.Respond(callCtx, history, docContext)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			s.log.WithPayload(map[string]interface{}{"session_id": sess.SessionID}).Warn("conversational capability timed out")
			return models.Answer{Text: answerUnavailable, Provider: ProviderSystem}, nil
		}
		return models.Answer{}, err
	}
	return models.Answer{Text: text, Provider: s.capabilityProvider}, nil
}

func parseDurationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
