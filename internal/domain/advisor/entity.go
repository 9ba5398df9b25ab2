// Package advisor defines the conversation domain for the fitness advisor
package advisor

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message within a conversation
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Conversation is the chat history between one user and the advisor
type Conversation struct {
	id        uuid.UUID
	userID    uuid.UUID
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
}

// NewConversation starts an empty conversation for a user
func NewConversation(userID uuid.UUID) (*Conversation, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user id is required")
	}

	now := time.Now()
	return &Conversation{
		id:        uuid.New(),
		userID:    userID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a conversation from persisted state
func Reconstruct(id, userID uuid.UUID, messages []Message, createdAt, updatedAt time.Time) *Conversation {
	return &Conversation{
		id:        id,
		userID:    userID,
		messages:  messages,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the conversation's ID
func (c *Conversation) ID() uuid.UUID {
	return c.id
}

// UserID returns the owning user's ID
func (c *Conversation) UserID() uuid.UUID {
	return c.userID
}

// Messages returns the full message history in order
func (c *Conversation) Messages() []Message {
	return c.messages
}

// CreatedAt returns when the conversation started
func (c *Conversation) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the conversation last changed
func (c *Conversation) UpdatedAt() time.Time {
	return c.updatedAt
}

// Append adds a message to the conversation
func (c *Conversation) Append(role Role, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("message content is required")
	}

	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	c.updatedAt = time.Now()
	return nil
}

// Window returns the most recent n messages. The full history stays
// persisted; only the window is forwarded to the completion endpoint.
func (c *Conversation) Window(n int) []Message {
	if n <= 0 || n >= len(c.messages) {
		return c.messages
	}
	return c.messages[len(c.messages)-n:]
}

// Len returns the number of messages in the conversation
func (c *Conversation) Len() int {
	return len(c.messages)
}
