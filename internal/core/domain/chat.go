package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single conversation turn. Ordering within a conversation
// is append-only and immutable once written.
type Message struct {
	// ID is the unique message identifier.
	ID string

	// Role is the message author: system, user, or assistant.
	Role Role

	// Content is the message text.
	Content string

	// Model is the model that produced an assistant message, if any.
	Model string

	// CreatedAt is when the message was appended.
	CreatedAt time.Time
}

// NewMessage constructs a message, rejecting unknown roles at
// construction rather than at point of use.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, ErrInvalidInput
	}
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ConversationMeta carries per-conversation cost state.
type ConversationMeta struct {
	// BudgetUSD is the optional spending cap. Nil means no budget.
	BudgetUSD *float64

	// SpentUSD is the accumulated spend. Monotonically non-decreasing;
	// only an explicit administrative override may reset it.
	SpentUSD float64
}

// Conversation is a chat session with its ordered message history.
type Conversation struct {
	// ID is the unique conversation identifier.
	ID string

	// Title is the human-readable conversation title.
	Title string

	// Model is the target model id for new turns.
	Model string

	// Messages is the ordered, append-only history.
	Messages []Message

	// Meta carries budget and accumulated spend.
	Meta ConversationMeta

	// CreatedAt is when the conversation was created.
	CreatedAt time.Time

	// UpdatedAt is when the conversation last changed.
	UpdatedAt time.Time
}

// NewConversation creates an empty conversation for the given model.
func NewConversation(title, model string) Conversation {
	now := time.Now().UTC()
	return Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
