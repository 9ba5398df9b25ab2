// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/domain/user"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// ConversationRepository defines the interface for chat history persistence
type ConversationRepository interface {
	Save(ctx context.Context, conversation *advisor.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*advisor.Conversation, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*advisor.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChatMessage is a single role/content pair on the completion wire
type ChatMessage struct {
	Role    string
	Content string
}

// AIService defines the interface to the hosted chat-completion endpoint
type AIService interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
