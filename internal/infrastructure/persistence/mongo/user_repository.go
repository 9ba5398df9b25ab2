package mongo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healyfit/healy/internal/domain/user"
	"github.com/healyfit/healy/internal/ports/outbound"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

// UserRepository implements the user repository interface against the
// document database
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) outbound.UserRepository {
	return &UserRepository{collection: db.Collection(usersCollection)}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.collection.InsertOne(ctx, userToDocument(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewEmailAlreadyExistsError(u.Email())
		}
		return apperrors.NewDatabaseError("create user", err)
	}

	return nil
}

// Update replaces an existing user document
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": u.ID().String()},
		userToDocument(u),
	)
	if err != nil {
		return apperrors.NewDatabaseError("update user", err)
	}

	if result.MatchedCount == 0 {
		return apperrors.NewUserNotFoundError(u.ID().String())
	}

	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var doc userDocument

	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewUserNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find user by id", err)
	}

	return documentToUser(&doc)
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc userDocument

	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("find user by email", err)
	}

	return documentToUser(&doc)
}
