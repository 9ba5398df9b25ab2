package webserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/test/testutils"
)

func (ts *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.server.router.ServeHTTP(w, r)
	return w
}

func formRequest(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func withSession(r *http.Request, session *Session) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	return r
}

// multipartRequest builds a chat form with an optional attached file
func multipartRequest(t *testing.T, path, message, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("message", message))
	if filename != "" {
		part, err := writer.CreateFormFile("datafile", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func TestHomePage(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Fitness Advisor")
}

func TestRegisterFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(formRequest("/register", url.Values{
		"name":     {"Jamie Doe"},
		"email":    {"jamie@example.com"},
		"password": {"supersecret"},
	}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/chat", w.Header().Get("Location"))

	_, err := ts.users.FindByEmail(context.Background(), "jamie@example.com")
	assert.NoError(t, err)

	// The session cookie ties the browser to the new account
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
}

func TestRegisterDuplicateEmailShowsError(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "jamie@example.com", "supersecret")

	w := ts.do(formRequest("/register", url.Values{
		"name":     {"Jamie Doe"},
		"email":    {"jamie@example.com"},
		"password": {"supersecret"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "jamie@example.com", "supersecret")

	w := ts.do(formRequest("/login", url.Values{
		"email":    {"jamie@example.com"},
		"password": {"supersecret"},
	}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/chat", w.Header().Get("Location"))
}

func TestLoginIssuesFreshSession(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "jamie@example.com", "supersecret")
	anon := ts.sessions.New()

	w := ts.do(withSession(formRequest("/login", url.Values{
		"email":    {"jamie@example.com"},
		"password": {"supersecret"},
	}), anon))

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.NotEqual(t, anon.ID, sessionCookie.Value, "the pre-login session id is retired")

	ts.sessions.mu.RLock()
	_, oldAlive := ts.sessions.sessions[anon.ID]
	fresh := ts.sessions.sessions[sessionCookie.Value]
	ts.sessions.mu.RUnlock()

	assert.False(t, oldAlive)
	require.NotNil(t, fresh)
	assert.True(t, fresh.IsAuthenticated())
	assert.NotEmpty(t, fresh.AccessToken, "the issued token travels with the session")
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "jamie@example.com", "supersecret")

	w := ts.do(formRequest("/login", url.Values{
		"email":    {"jamie@example.com"},
		"password": {"wrong-password"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestChatRequiresAuthentication(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/chat", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestChatPage(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)

	w := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/chat", nil), session))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test User")
}

func TestHTMXAdvice(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)

	r := withSession(multipartRequest(t, "/htmx/advice", "How can I improve my squat?", "", nil), session)
	r.Header.Set("HX-Request", "true")
	w := ts.do(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "How can I improve my squat?")
	assert.Contains(t, w.Body.String(), ts.ai.reply)
	assert.Equal(t, 1, ts.ai.calls)
}

func TestHTMXAdviceEmptyQuestion(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)

	r := withSession(multipartRequest(t, "/htmx/advice", "   ", "", nil), session)
	w := ts.do(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a fitness question before submitting")
	assert.Equal(t, 0, ts.ai.calls, "empty questions never reach the endpoint")
}

func TestHTMXAdviceCompletionFailureStaysInline(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)
	ts.ai.err = assert.AnError

	r := withSession(multipartRequest(t, "/htmx/advice", "How can I improve my squat?", "", nil), session)
	w := ts.do(r)

	assert.Equal(t, http.StatusOK, w.Code, "a completion failure is shown in the chat, not as a server error")
	assert.Contains(t, w.Body.String(), "Error:")
}

func TestHTMXAdviceWithUpload(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)
	csv := []byte(testutils.CSVContent(3))

	r := withSession(multipartRequest(t, "/htmx/advice", "Am I overtraining?", "workouts.csv", csv), session)
	w := ts.do(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "workouts.csv", session.UploadFilename)
	require.NotEmpty(t, session.UploadFingerprint)

	// The same file on the next question is not reprocessed
	fingerprint := session.UploadFingerprint
	r = withSession(multipartRequest(t, "/htmx/advice", "And my bench?", "workouts.csv", csv), session)
	w = ts.do(r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fingerprint, session.UploadFingerprint)
	assert.Equal(t, 2, ts.ai.calls)
}

func TestHTMXAdviceMalformedUpload(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)

	// A multipart content type without a boundary cannot be parsed
	r := httptest.NewRequest(http.MethodPost, "/htmx/advice", strings.NewReader("message=hello"))
	r.Header.Set("Content-Type", "multipart/form-data")
	w := ts.do(withSession(r, session))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "could not be parsed")
	assert.NotContains(t, w.Body.String(), "may not exceed", "a parse failure is not reported as a size failure")
	assert.Equal(t, 0, ts.ai.calls)
}

func TestSessionExpiredHTMX(t *testing.T) {
	ts := newTestServer(t)

	r := multipartRequest(t, "/htmx/advice", "hello", "", nil)
	r.Header.Set("HX-Request", "true")
	w := ts.do(r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login")
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)

	w := ts.do(withSession(formRequest("/logout", url.Values{}), session))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.False(t, session.IsAuthenticated())
}

func TestChatReset(t *testing.T) {
	ts := newTestServer(t)
	u := ts.registerUser(t, "jamie@example.com", "supersecret")
	session := ts.authenticatedSession(u)
	session.RecordUpload("fp-1", "workouts.csv", "ctx")

	w := ts.do(withSession(formRequest("/chat/reset", url.Values{}), session))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, session.UploadFingerprint, "a new conversation starts without the old upload")
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = ts.do(httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestRateLimitEnforced(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enable: true, RequestsPerMin: 2}
	})

	for i := 0; i < 2; i++ {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitSweepDropsIdleEntries(t *testing.T) {
	ts := newTestServer(t)
	ts.server.rateLimitStore.Store("rate_limit:203.0.113.7", &rateLimitEntry{
		requests: []time.Time{time.Now().Add(-2 * time.Minute)},
	})
	ts.server.rateLimitStore.Store("rate_limit:203.0.113.8", &rateLimitEntry{
		requests: []time.Time{time.Now()},
	})

	ts.server.sweepRateLimits(time.Now().Add(-time.Minute))

	_, stale := ts.server.rateLimitStore.Load("rate_limit:203.0.113.7")
	assert.False(t, stale, "idle entries are evicted")
	_, active := ts.server.rateLimitStore.Load("rate_limit:203.0.113.8")
	assert.True(t, active, "active entries survive the sweep")
}
