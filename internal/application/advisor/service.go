// Package advisor provides the application layer for the fitness advisor chat
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	"github.com/healyfit/healy/internal/ports/outbound"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

const systemPrompt = "You're a professional fitness advisor."

// Service implements the advice chat use cases
type Service struct {
	conversations outbound.ConversationRepository
	ai            outbound.AIService
	historyWindow int
	logger        *zap.Logger
	metrics       *monitoring.Metrics
}

// NewService creates a new advisor service
func NewService(
	conversations outbound.ConversationRepository,
	ai outbound.AIService,
	historyWindow int,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) *Service {
	return &Service{
		conversations: conversations,
		ai:            ai,
		historyWindow: historyWindow,
		logger:        logger.Named("advisor-service"),
		metrics:       metrics,
	}
}

// AdviseCommand contains one advice request
type AdviseCommand struct {
	UserID      uuid.UUID
	Message     string
	DataContext string
}

// AdviseResult contains the assistant's reply and the conversation it
// belongs to
type AdviseResult struct {
	ConversationID uuid.UUID
	Reply          string
}

// Advise appends the user's question to their conversation, forwards the
// message window to the completion endpoint and persists the reply.
func (s *Service) Advise(ctx context.Context, cmd AdviseCommand) (*AdviseResult, error) {
	message := strings.TrimSpace(cmd.Message)
	if message == "" {
		return nil, apperrors.NewEmptyQuestionError()
	}

	conversation, err := s.loadOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := conversation.Append(advisor.RoleUser, message); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	s.metrics.RecordAdviceRequest()

	reply, err := s.ai.Complete(ctx, s.buildMessages(conversation, cmd.DataContext))
	if err != nil {
		s.logger.Error("Completion endpoint call failed",
			zap.String("user_id", cmd.UserID.String()),
			zap.Error(err),
		)
		return nil, apperrors.NewAdvisorUnavailableError(err)
	}

	if err := conversation.Append(advisor.RoleAssistant, reply); err != nil {
		return nil, apperrors.NewInternalError(err.Error())
	}

	if err := s.conversations.Save(ctx, conversation); err != nil {
		// The user already has the reply; losing history is logged, not fatal.
		s.logger.Error("Failed to persist conversation",
			zap.String("conversation_id", conversation.ID().String()),
			zap.Error(err),
		)
	}

	return &AdviseResult{
		ConversationID: conversation.ID(),
		Reply:          reply,
	}, nil
}

// History returns the user's current conversation messages, oldest first.
// A user without a conversation gets an empty history, not an error.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]advisor.Message, error) {
	conversation, err := s.conversations.FindLatestByUser(ctx, userID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeConversationNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return conversation.Messages(), nil
}

// Reset discards the user's current conversation so the next question
// starts fresh
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) error {
	conversation, err := s.conversations.FindLatestByUser(ctx, userID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeConversationNotFound) {
			return nil
		}
		return err
	}

	return s.conversations.Delete(ctx, conversation.ID())
}

// loadOrCreate returns the user's latest conversation, starting one if none
// exists
func (s *Service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*advisor.Conversation, error) {
	conversation, err := s.conversations.FindLatestByUser(ctx, userID)
	if err == nil {
		return conversation, nil
	}
	if !apperrors.IsCode(err, apperrors.CodeConversationNotFound) {
		return nil, err
	}

	conversation, err = advisor.NewConversation(userID)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	return conversation, nil
}

// buildMessages assembles the wire messages: the fixed system prompt, an
// optional uploaded-data block and the windowed history ending with the
// user's latest question.
func (s *Service) buildMessages(conversation *advisor.Conversation, dataContext string) []outbound.ChatMessage {
	window := conversation.Window(s.historyWindow)
	messages := make([]outbound.ChatMessage, 0, len(window)+2)

	messages = append(messages, outbound.ChatMessage{
		Role:    string(advisor.RoleSystem),
		Content: systemPrompt,
	})

	if dataContext != "" {
		messages = append(messages, outbound.ChatMessage{
			Role: string(advisor.RoleSystem),
			Content: fmt.Sprintf(
				"The user uploaded the following fitness data. Use it when it is relevant to their question.\n\n%s",
				dataContext,
			),
		})
	}

	for _, m := range window {
		messages = append(messages, outbound.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	return messages
}
