package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/infrastructure/cache"
)

// fakeCache is an in-memory CacheRepository standing in for Redis
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, assert.AnError
	}
	data, exists := c.entries[key]
	if !exists {
		return nil, cache.ErrCacheMiss
	}
	return data, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return assert.AnError
	}
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func requestWithCookie(sessionID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	return r
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour, zap.NewNop())

	session := store.New()
	session.UserID = "some-user"

	w := httptest.NewRecorder()
	store.Save(context.Background(), w, session)

	// The cookie references the session
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, session.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	loaded, err := store.Get(context.Background(), requestWithCookie(session.ID))
	require.NoError(t, err)
	assert.Equal(t, "some-user", loaded.UserID)
}

func TestSessionStoreGetWithoutCookie(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour, zap.NewNop())

	_, err := store.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}

func TestSessionStoreRehydratesFromCache(t *testing.T) {
	cacheRepo := newFakeCache()
	store := NewSessionStore(cacheRepo, time.Hour, zap.NewNop())

	session := store.New()
	session.UserID = "some-user"
	session.RecordUpload("fp-1", "workouts.csv", "File: workouts.csv")
	store.Save(context.Background(), httptest.NewRecorder(), session)

	// Simulate a process restart: the in-memory map is gone, Redis is not
	store.mu.Lock()
	store.sessions = make(map[string]*Session)
	store.mu.Unlock()

	loaded, err := store.Get(context.Background(), requestWithCookie(session.ID))
	require.NoError(t, err)
	assert.Equal(t, "some-user", loaded.UserID)
	assert.Equal(t, "fp-1", loaded.UploadFingerprint)
	assert.Equal(t, "workouts.csv", loaded.UploadFilename)
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour, zap.NewNop())

	session := store.New()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	store.mu.Lock()
	store.sessions[session.ID] = session
	store.mu.Unlock()

	_, err := store.Get(context.Background(), requestWithCookie(session.ID))
	assert.Error(t, err)
}

func TestSessionStoreSurvivesCacheFailure(t *testing.T) {
	cacheRepo := newFakeCache()
	cacheRepo.failing = true
	store := NewSessionStore(cacheRepo, time.Hour, zap.NewNop())

	session := store.New()
	session.UserID = "some-user"
	store.Save(context.Background(), httptest.NewRecorder(), session)

	// The write-through failed but the in-memory copy still serves
	loaded, err := store.Get(context.Background(), requestWithCookie(session.ID))
	require.NoError(t, err)
	assert.Equal(t, "some-user", loaded.UserID)
}

func TestSessionClear(t *testing.T) {
	session := &Session{
		UserID:            "some-user",
		UploadFingerprint: "fp-1",
		UploadFilename:    "workouts.csv",
		DataContext:       "File: workouts.csv",
		Data:              map[string]interface{}{"key": "value"},
	}

	session.Clear()

	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.UploadFingerprint)
	assert.Empty(t, session.UploadFilename)
	assert.Empty(t, session.DataContext)
	assert.Empty(t, session.Data)
}

func TestNeedsUploadProcessing(t *testing.T) {
	session := &Session{}

	assert.False(t, session.NeedsUploadProcessing(""), "no file uploaded")
	assert.True(t, session.NeedsUploadProcessing("fp-1"), "first upload is a new event")

	session.RecordUpload("fp-1", "workouts.csv", "ctx")
	assert.False(t, session.NeedsUploadProcessing("fp-1"), "same event is not reprocessed")
	assert.True(t, session.NeedsUploadProcessing("fp-2"), "changed file is a new event")
}
