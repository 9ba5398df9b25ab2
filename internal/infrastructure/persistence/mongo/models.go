package mongo

import (
	"time"

	"github.com/google/uuid"

	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/domain/user"
)

// userDocument is the BSON representation of a user
type userDocument struct {
	ID           string           `bson:"_id"`
	Email        string           `bson:"email"`
	Name         string           `bson:"name"`
	PasswordHash string           `bson:"password_hash"`
	IsActive     bool             `bson:"is_active"`
	Profile      *profileDocument `bson:"profile,omitempty"`
	CreatedAt    time.Time        `bson:"created_at"`
	UpdatedAt    time.Time        `bson:"updated_at"`
	LastLoginAt  *time.Time       `bson:"last_login_at,omitempty"`
}

type profileDocument struct {
	Age          int      `bson:"age,omitempty"`
	HeightCM     float64  `bson:"height_cm,omitempty"`
	WeightKG     float64  `bson:"weight_kg,omitempty"`
	FitnessLevel string   `bson:"fitness_level,omitempty"`
	Goals        []string `bson:"goals,omitempty"`
	Injuries     []string `bson:"injuries,omitempty"`
}

// conversationDocument is the BSON representation of a conversation
type conversationDocument struct {
	ID        string            `bson:"_id"`
	UserID    string            `bson:"user_id"`
	Messages  []messageDocument `bson:"messages"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type messageDocument struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// userToDocument maps a domain user to its BSON document
func userToDocument(u *user.User) *userDocument {
	doc := &userDocument{
		ID:           u.ID().String(),
		Email:        u.Email(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		IsActive:     u.IsActive(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}

	if p := u.Profile(); p != nil {
		doc.Profile = &profileDocument{
			Age:          p.Age,
			HeightCM:     p.HeightCM,
			WeightKG:     p.WeightKG,
			FitnessLevel: string(p.FitnessLevel),
			Goals:        p.Goals,
			Injuries:     p.Injuries,
		}
	}

	return doc
}

// documentToUser maps a BSON document back to the domain entity
func documentToUser(doc *userDocument) (*user.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}

	var profile *user.Profile
	if doc.Profile != nil {
		profile = &user.Profile{
			Age:          doc.Profile.Age,
			HeightCM:     doc.Profile.HeightCM,
			WeightKG:     doc.Profile.WeightKG,
			FitnessLevel: user.FitnessLevel(doc.Profile.FitnessLevel),
			Goals:        doc.Profile.Goals,
			Injuries:     doc.Profile.Injuries,
		}
	}

	return user.Reconstruct(
		id,
		doc.Email,
		doc.Name,
		doc.PasswordHash,
		doc.IsActive,
		profile,
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.LastLoginAt,
	), nil
}

// conversationToDocument maps a conversation to its BSON document
func conversationToDocument(c *advisor.Conversation) *conversationDocument {
	messages := make([]messageDocument, len(c.Messages()))
	for i, m := range c.Messages() {
		messages[i] = messageDocument{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}

	return &conversationDocument{
		ID:        c.ID().String(),
		UserID:    c.UserID().String(),
		Messages:  messages,
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

// documentToConversation maps a BSON document back to the domain entity
func documentToConversation(doc *conversationDocument) (*advisor.Conversation, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, err
	}

	messages := make([]advisor.Message, len(doc.Messages))
	for i, m := range doc.Messages {
		messages[i] = advisor.Message{
			Role:      advisor.Role(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}

	return advisor.Reconstruct(id, userID, messages, doc.CreatedAt, doc.UpdatedAt), nil
}
