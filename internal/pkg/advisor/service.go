package advisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yonderlust/yonderlust/app/models"
	"github.com/yonderlust/yonderlust/app/repository"
	"github.com/yonderlust/yonderlust/internal/pkg/llm"
	"github.com/yonderlust/yonderlust/internal/pkg/quota"
)

const (
	maxReplyTokens = 2048
	maxTitleTokens = 50

	// fallbackTitle is used when the one-shot title generation fails; the
	// exchange itself still succeeds.
	fallbackTitle = "New Conversation"

	titleInputLimit = 200
)

var (
	// ErrEmptyMessage is a validation failure: nothing to send.
	ErrEmptyMessage = errors.New("conversation ID and message are required")
	// ErrConversationNotFound covers both missing and foreign-owned
	// conversations; callers get the same generic answer either way.
	ErrConversationNotFound = errors.New("conversation not found")
)

// QuotaError is the expected, user-recoverable denial. It carries the
// reason so the interface can present an upgrade path instead of a
// generic failure.
type QuotaError struct {
	Reason    string
	Remaining int
}

func (e *QuotaError) Error() string {
	return "subscription_limit_reached: " + e.Reason
}

// ExchangeResult is a completed Carlo exchange.
type ExchangeResult struct {
	Reply string `json:"message"`
}

// Service orchestrates one chat exchange: quota gate, ownership check,
// context assembly, generation, and ledger bookkeeping.
type Service struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
	quota         *quota.Engine
	assembler     *Assembler
	generator     llm.Generator
	now           func() time.Time
}

// NewService wires the advisor service.
func NewService(
	conversations repository.ConversationRepository,
	users repository.UserRepository,
	quotaEngine *quota.Engine,
	assembler *Assembler,
	generator llm.Generator,
) *Service {
	return &Service{
		conversations: conversations,
		users:         users,
		quota:         quotaEngine,
		assembler:     assembler,
		generator:     generator,
		now:           time.Now,
	}
}

// SendMessage runs one exchange. Ordering guarantee: the user message is
// durably saved before the generation call; the reply is saved after it
// returns. Once the user message is saved, later failures never delete it;
// the ledger may hold a user turn without a reply, which the UI tolerates.
// Usage is recorded only after the reply is durably saved, so a failed
// exchange does not consume quota.
func (s *Service) SendMessage(ctx context.Context, userID, conversationID, message string, sel Selection) (*ExchangeResult, error) {
	access := s.quota.CheckAccess(userID)
	if !access.Allowed {
		return nil, &QuotaError{Reason: access.Reason, Remaining: access.Remaining}
	}

	message = strings.TrimSpace(message)
	if conversationID == "" || message == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.conversations.GetByIDAndUser(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	history, err := s.conversations.ListMessages(conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.AppendMessage(&models.ConversationMessage{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        message,
	}); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	systemPrompt, err := s.assembler.BuildPrompt(userID, sel)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	turns := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, llm.Message{Role: models.RoleUser, Content: message})

	reply, err := s.generator.Generate(ctx, systemPrompt, turns, maxReplyTokens)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	if err := s.conversations.AppendMessage(&models.ConversationMessage{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        reply,
	}); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if conv.Title == nil && len(history) == 0 {
		title := s.deriveTitle(ctx, message, reply)
		if err := s.conversations.UpdateTitle(conversationID, title); err != nil {
			log.Printf("advisor: title update failed for %s: %v", conversationID, err)
		}
	} else {
		if err := s.conversations.Touch(conversationID); err != nil {
			log.Printf("advisor: touch failed for %s: %v", conversationID, err)
		}
	}

	s.markFirstChat(userID)

	if err := s.quota.RecordUsage(userID); err != nil {
		log.Printf("advisor: usage record failed for %s: %v", userID, err)
	}

	return &ExchangeResult{Reply: reply}, nil
}

// deriveTitle asks the generator for a 3-5 word summary of the first
// exchange. Best effort: errors fall back to a fixed title.
func (s *Service) deriveTitle(ctx context.Context, userMessage, assistantMessage string) string {
	prompt := fmt.Sprintf(`Generate a very short title (3-5 words max) for this conversation. Just respond with the title, nothing else.

User asked: %q
Assistant replied about: %q`,
		truncate(userMessage, titleInputLimit), truncate(assistantMessage, titleInputLimit))

	title, err := s.generator.Generate(ctx, "", []llm.Message{{Role: models.RoleUser, Content: prompt}}, maxTitleTokens)
	if err != nil {
		log.Printf("advisor: title generation failed: %v", err)
		return fallbackTitle
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fallbackTitle
	}
	return title
}

func (s *Service) markFirstChat(userID string) {
	user, err := s.users.GetByID(userID)
	if err != nil || user.HasUsedCarloChat {
		return
	}
	now := s.now()
	if err := s.users.UpdateFields(userID, map[string]interface{}{
		"has_used_carlo_chat": true,
		"first_carlo_chat_at": &now,
	}); err != nil {
		log.Printf("advisor: milestone update failed for %s: %v", userID, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
