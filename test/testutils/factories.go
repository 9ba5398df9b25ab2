// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/domain/user"
)

// UserFactory provides methods to create test users
type UserFactory struct {
	faker *gofakeit.Faker
}

// NewUserFactory creates a new user factory with seeded faker
func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{
		faker: gofakeit.New(seed),
	}
}

// Password used for every factory-built user so tests can log in
const FactoryPassword = "correct-horse-battery"

// NewUser creates a valid active user with random identity fields
func (f *UserFactory) NewUser() *user.User {
	email := strings.ToLower(f.faker.Email())
	u, err := user.NewUser(email, f.faker.Name(), FactoryPassword)
	if err != nil {
		panic(fmt.Sprintf("factory user creation failed: %v", err))
	}
	return u
}

// NewUserWithEmail creates a valid user with the given email
func (f *UserFactory) NewUserWithEmail(email string) *user.User {
	u, err := user.NewUser(email, f.faker.Name(), FactoryPassword)
	if err != nil {
		panic(fmt.Sprintf("factory user creation failed: %v", err))
	}
	return u
}

// NewProfile creates a plausible fitness profile
func (f *UserFactory) NewProfile() *user.Profile {
	levels := []user.FitnessLevel{
		user.FitnessLevelBeginner,
		user.FitnessLevelIntermediate,
		user.FitnessLevelAdvanced,
	}

	return &user.Profile{
		Age:          f.faker.Number(18, 70),
		HeightCM:     f.faker.Float64Range(150, 200),
		WeightKG:     f.faker.Float64Range(50, 120),
		FitnessLevel: levels[f.faker.Number(0, len(levels)-1)],
		Goals:        []string{"build muscle", "run a 10k"},
	}
}

// ConversationFactory provides methods to create test conversations
type ConversationFactory struct {
	faker *gofakeit.Faker
}

// NewConversationFactory creates a new conversation factory with seeded faker
func NewConversationFactory(seed int64) *ConversationFactory {
	return &ConversationFactory{
		faker: gofakeit.New(seed),
	}
}

// NewConversation creates a conversation with the given number of exchanges
func (f *ConversationFactory) NewConversation(userID uuid.UUID, exchanges int) *advisor.Conversation {
	conversation, err := advisor.NewConversation(userID)
	if err != nil {
		panic(fmt.Sprintf("factory conversation creation failed: %v", err))
	}

	for i := 0; i < exchanges; i++ {
		if err := conversation.Append(advisor.RoleUser, f.faker.Question()); err != nil {
			panic(fmt.Sprintf("factory question append failed: %v", err))
		}
		if err := conversation.Append(advisor.RoleAssistant, f.faker.Paragraph(1, 2, 8, " ")); err != nil {
			panic(fmt.Sprintf("factory answer append failed: %v", err))
		}
	}

	return conversation
}

// CSVContent builds a small workout CSV for upload tests
func CSVContent(rows int) string {
	var sb strings.Builder
	sb.WriteString("date,exercise,sets,reps,weight_kg\n")
	for i := 0; i < rows; i++ {
		day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		sb.WriteString(fmt.Sprintf("%s,squat,%d,%d,%d\n", day.Format("2006-01-02"), 3+i%2, 5, 60+5*i))
	}
	return sb.String()
}
