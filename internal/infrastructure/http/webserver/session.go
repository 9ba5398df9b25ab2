// Package webserver provides session management for the web frontend
package webserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/ports/outbound"
)

const (
	sessionCookieName = "healy-session"
	sessionKeyPrefix  = "session:"
)

// Session represents a user session. UserID is empty for anonymous visitors.
// An authenticated session also carries the access token issued at login;
// reconciliation rejects the identity if the token no longer verifies.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`

	// Upload bookkeeping: the fingerprint identifies the last processed
	// upload event so the same file is summarized exactly once.
	UploadFingerprint string `json:"upload_fingerprint,omitempty"`
	UploadFilename    string `json:"upload_filename,omitempty"`
	DataContext       string `json:"data_context,omitempty"`

	Data map[string]interface{} `json:"data"`
}

// SessionStore manages user sessions. The in-memory map is the first-level
// store; sessions are written through to Redis so a process restart does not
// log users out.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	cache    outbound.CacheRepository
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(cache outbound.CacheRepository, maxAge time.Duration, logger *zap.Logger) *SessionStore {
	store := &SessionStore{
		sessions: make(map[string]*Session),
		cache:    cache,
		maxAge:   maxAge,
		logger:   logger,
	}

	// Start cleanup goroutine
	go store.cleanupExpired()

	return store
}

// Get retrieves the session referenced by the request cookie. A cookie whose
// session is no longer in memory is rehydrated from Redis before giving up.
func (s *SessionStore) Get(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	session, exists := s.sessions[cookie.Value]
	s.mu.RUnlock()

	if !exists {
		session, err = s.rehydrate(ctx, cookie.Value)
		if err != nil {
			return nil, http.ErrNoCookie
		}
	}

	// Check if session is expired
	if time.Now().After(session.ExpiresAt) {
		s.Delete(ctx, session.ID)
		return nil, http.ErrNoCookie
	}

	return session, nil
}

// New creates a new anonymous session
func (s *SessionStore) New() *Session {
	session := &Session{
		ID:        generateSessionID(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.maxAge),
		Data:      make(map[string]interface{}),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Save persists the session and sets the cookie
func (s *SessionStore) Save(ctx context.Context, w http.ResponseWriter, session *Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	if data, err := json.Marshal(session); err == nil {
		ttl := time.Until(session.ExpiresAt)
		if ttl > 0 {
			if err := s.cache.Set(ctx, sessionKeyPrefix+session.ID, data, ttl); err != nil {
				s.logger.Warn("Failed to persist session to cache",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	})
}

// Delete removes a session from memory and Redis
func (s *SessionStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		s.logger.Debug("Failed to delete cached session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// rehydrate loads a session from Redis back into memory
func (s *SessionStore) rehydrate(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Data == nil {
		session.Data = make(map[string]interface{})
	}

	s.mu.Lock()
	s.sessions[session.ID] = &session
	s.mu.Unlock()

	s.logger.Debug("Rehydrated session from cache", zap.String("session_id", session.ID))

	return &session, nil
}

// cleanupExpired removes expired sessions periodically
func (s *SessionStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, session := range s.sessions {
			if now.After(session.ExpiresAt) {
				delete(s.sessions, id)
				s.logger.Debug("Cleaned up expired session", zap.String("session_id", id))
			}
		}
		s.mu.Unlock()
	}
}

// Clear resets the session to an anonymous state
func (session *Session) Clear() {
	session.UserID = ""
	session.AccessToken = ""
	session.UploadFingerprint = ""
	session.UploadFilename = ""
	session.DataContext = ""
	session.Data = make(map[string]interface{})
}

// IsAuthenticated reports whether the session carries a user identity
func (session *Session) IsAuthenticated() bool {
	return session.UserID != ""
}

// NeedsUploadProcessing reports whether the given fingerprint describes a
// new upload event. An empty fingerprint means no file was uploaded.
func (session *Session) NeedsUploadProcessing(fingerprint string) bool {
	return fingerprint != "" && fingerprint != session.UploadFingerprint
}

// RecordUpload stores the processed upload so the same event is not
// processed again
func (session *Session) RecordUpload(fingerprint, filename, dataContext string) {
	session.UploadFingerprint = fingerprint
	session.UploadFilename = filename
	session.DataContext = dataContext
}

// generateSessionID generates a random session ID
func generateSessionID() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
