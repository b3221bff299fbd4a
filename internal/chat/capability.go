package chat

import (
	"context"
	"fmt"
	"strings"

	"FinSight/internal/llm"
	"FinSight/internal/models"
)

// Capability is the external conversational backend used for general chat
// and for questions no specialized handler recognizes. Implementations are
// expected to honor the deadline on ctx; the caller recovers a timeout into
// a graceful answer instead of propagating it.
type Capability interface {
	Respond(ctx context.Context, history []models.ChatMessage, docContext string) (string, error)
}

// LLMCapability adapts an llm.LLM client to the Capability interface by
// flattening the session history and optional document text into a single
// prompt.
type LLMCapability struct {
	client llm.LLM
}

// NewLLMCapability creates a new LLMCapability.
func NewLLMCapability(client llm.LLM) *LLMCapability {
	return &LLMCapability{client: client}
}

// Respond builds the prompt and calls the underlying model. The last history
// entry is expected to be the user's current question.
func (c *LLMCapability) Respond(ctx context.Context, history []models.ChatMessage, docContext string) (string, error) {
	prompt := buildPrompt(history, docContext)

	resp, err := c.client.GenerateContent(ctx, &models.GenerateContentRequest{
		Content: []models.Content{{
			Role:  models.SpeakerUser,
			Parts: []*models.Part{{Text: prompt}},
		}},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 || len(resp.Content[0].Parts) == 0 {
		return "", fmt.Errorf("empty response from conversational backend")
	}
	return resp.Content[0].Parts[0].Text, nil
}

// buildPrompt renders the document context and conversation transcript into
// one instruction block.
func buildPrompt(history []models.ChatMessage, docContext string) string {
	var sb strings.Builder

	sb.WriteString("You are a financial assistant answering questions about uploaded documents.\n\n")
	if docContext != "" {
		sb.WriteString("Document content:\n---\n")
		sb.WriteString(docContext)
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("Conversation so far:\n")
	for _, msg := range history {
		sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	sb.WriteString("assistant:")

	return sb.String()
}

// compile-time check to ensure LLMCapability implements the Capability interface
var _ Capability = (*LLMCapability)(nil)
