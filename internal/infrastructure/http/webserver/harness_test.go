package webserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	advisorapp "github.com/healyfit/healy/internal/application/advisor"
	userapp "github.com/healyfit/healy/internal/application/user"
	"github.com/healyfit/healy/internal/application/upload"
	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/domain/user"
	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	"github.com/healyfit/healy/internal/ports/outbound"
	apperrors "github.com/healyfit/healy/pkg/errors"
	"github.com/healyfit/healy/pkg/healthcheck"
)

// memoryUserRepository is an in-memory UserRepository for handler tests
type memoryUserRepository struct {
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
	findErr error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, u *user.User) error {
	if _, exists := r.byEmail[u.Email()]; exists {
		return apperrors.NewEmailAlreadyExistsError(u.Email())
	}
	r.byID[u.ID()] = u
	r.byEmail[u.Email()] = u
	return nil
}

func (r *memoryUserRepository) Update(ctx context.Context, u *user.User) error {
	r.byID[u.ID()] = u
	r.byEmail[u.Email()] = u
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, exists := r.byID[id]
	if !exists {
		return nil, apperrors.NewUserNotFoundError(id.String())
	}
	return u, nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, apperrors.NewUserNotFoundError(email)
	}
	return u, nil
}

// memoryConversationRepository is an in-memory ConversationRepository
type memoryConversationRepository struct {
	conversations map[uuid.UUID]*advisor.Conversation
}

func newMemoryConversationRepository() *memoryConversationRepository {
	return &memoryConversationRepository{
		conversations: make(map[uuid.UUID]*advisor.Conversation),
	}
}

func (r *memoryConversationRepository) Save(ctx context.Context, c *advisor.Conversation) error {
	r.conversations[c.ID()] = c
	return nil
}

func (r *memoryConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*advisor.Conversation, error) {
	c, exists := r.conversations[id]
	if !exists {
		return nil, apperrors.NewConversationNotFoundError(id.String())
	}
	return c, nil
}

func (r *memoryConversationRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*advisor.Conversation, error) {
	var latest *advisor.Conversation
	for _, c := range r.conversations {
		if c.UserID() != userID {
			continue
		}
		if latest == nil || c.UpdatedAt().After(latest.UpdatedAt()) {
			latest = c
		}
	}
	if latest == nil {
		return nil, apperrors.NewConversationNotFoundError(userID.String())
	}
	return latest, nil
}

func (r *memoryConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.conversations, id)
	return nil
}

// fakeAIService returns a canned reply and records call counts
type fakeAIService struct {
	reply string
	err   error
	calls int
}

func (f *fakeAIService) Complete(ctx context.Context, messages []outbound.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// testServer bundles a WebServer with the fakes behind it
type testServer struct {
	server   *WebServer
	users    *memoryUserRepository
	ai       *fakeAIService
	sessions *SessionStore
	userSvc  *userapp.Service
	tokens   map[uuid.UUID]string
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{
			Name:        "healy-test",
			Environment: "test",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
		},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret-key-for-testing-only",
			JWTExpiration: time.Hour,
			SessionMaxAge: time.Hour,
		},
		Upload: config.UploadConfig{
			MaxFileSize:       1 << 20,
			MaxPreviewRows:    5,
			AllowedExtensions: []string{".csv"},
		},
		RateLimit: config.RateLimitConfig{Enable: false},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := zap.NewNop()
	metrics := monitoring.NewMetrics()
	users := newMemoryUserRepository()
	conversations := newMemoryConversationRepository()
	ai := &fakeAIService{reply: "Train consistently and rest well."}

	userSvc := userapp.NewService(users, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration, log, metrics)
	advisorSvc := advisorapp.NewService(conversations, ai, 20, log, metrics)
	summarizer := upload.NewSummarizer(cfg, log, metrics)
	sessionStore := NewSessionStore(newFakeCache(), cfg.Auth.SessionMaxAge, log)
	hc := healthcheck.New("test", log)

	server, err := NewWebServer(cfg, log, userSvc, advisorSvc, summarizer, sessionStore, hc, metrics)
	require.NoError(t, err)

	return &testServer{
		server:   server,
		users:    users,
		ai:       ai,
		sessions: sessionStore,
		userSvc:  userSvc,
		tokens:   make(map[uuid.UUID]string),
	}
}

// registerUser creates an account directly and returns the stored entity
func (ts *testServer) registerUser(t *testing.T, email, password string) *user.User {
	t.Helper()

	resp, err := ts.userSvc.Register(context.Background(), userapp.RegisterCommand{
		Email:    email,
		Name:     "Test User",
		Password: password,
	})
	require.NoError(t, err)
	ts.tokens[resp.User.ID] = resp.AccessToken

	stored, err := ts.users.FindByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	return stored
}

// authenticatedSession creates a session tied to the given user, carrying
// the access token issued at registration
func (ts *testServer) authenticatedSession(u *user.User) *Session {
	session := ts.sessions.New()
	session.UserID = u.ID().String()
	session.AccessToken = ts.tokens[u.ID()]
	return session
}
