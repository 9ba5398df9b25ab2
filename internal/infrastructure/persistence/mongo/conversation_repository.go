package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/ports/outbound"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

// ConversationRepository implements chat-history persistence against the
// document database
type ConversationRepository struct {
	collection *mongo.Collection
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *mongo.Database) outbound.ConversationRepository {
	return &ConversationRepository{collection: db.Collection(conversationsCollection)}
}

// Save upserts the full conversation document
func (r *ConversationRepository) Save(ctx context.Context, c *advisor.Conversation) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": c.ID().String()},
		conversationToDocument(c),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return apperrors.NewDatabaseError("save conversation", err)
	}

	return nil
}

// FindByID finds a conversation by ID
func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*advisor.Conversation, error) {
	var doc conversationDocument

	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewConversationNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find conversation", err)
	}

	return documentToConversation(&doc)
}

// FindLatestByUser finds the most recently updated conversation for a user
func (r *ConversationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*advisor.Conversation, error) {
	var doc conversationDocument

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID.String()}, opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewConversationNotFoundError(userID.String())
		}
		return nil, apperrors.NewDatabaseError("find latest conversation", err)
	}

	return documentToConversation(&doc)
}

// Delete removes a conversation
func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return apperrors.NewDatabaseError("delete conversation", err)
	}

	if result.DeletedCount == 0 {
		return apperrors.NewConversationNotFoundError(id.String())
	}

	return nil
}
