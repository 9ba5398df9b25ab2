// Package webserver provides the web frontend HTTP server implementation
package webserver

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	advisorapp "github.com/healyfit/healy/internal/application/advisor"
	userapp "github.com/healyfit/healy/internal/application/user"
	"github.com/healyfit/healy/internal/application/upload"
	"github.com/healyfit/healy/internal/domain/advisor"
	"github.com/healyfit/healy/internal/domain/user"
	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	apperrors "github.com/healyfit/healy/pkg/errors"
	"github.com/healyfit/healy/pkg/healthcheck"
)

//go:embed templates/*
var templatesFS embed.FS

const userContextKey contextKey = iota + 1

// WebServer represents the web frontend HTTP server
type WebServer struct {
	config         *config.Config
	logger         *zap.Logger
	server         *http.Server
	router         *chi.Mux
	userSvc        *userapp.Service
	advisorSvc     *advisorapp.Service
	summarizer     *upload.Summarizer
	sessionStore   *SessionStore
	templates      *template.Template
	healthCheck    *healthcheck.HealthCheck
	metrics        *monitoring.Metrics
	rateLimitStore *sync.Map
}

// NewWebServer creates a new web frontend server instance
func NewWebServer(
	cfg *config.Config,
	log *zap.Logger,
	userSvc *userapp.Service,
	advisorSvc *advisorapp.Service,
	summarizer *upload.Summarizer,
	sessionStore *SessionStore,
	healthCheck *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
) (*WebServer, error) {
	templates, err := parseTemplates()
	if err != nil {
		log.Error("Failed to parse templates", zap.Error(err))
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	server := &WebServer{
		config:         cfg,
		logger:         log,
		userSvc:        userSvc,
		advisorSvc:     advisorSvc,
		summarizer:     summarizer,
		sessionStore:   sessionStore,
		templates:      templates,
		healthCheck:    healthCheck,
		metrics:        metrics,
		rateLimitStore: &sync.Map{},
	}

	if cfg.RateLimit.Enable {
		go server.cleanupRateLimits()
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures the web frontend routes
func (s *WebServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLoggerMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.sessionMiddleware)
	if s.config.RateLimit.Enable {
		r.Use(s.rateLimitMiddleware)
	}

	// Health check endpoints
	r.Get("/health", s.handleHealthCheck)
	r.Get("/ready", s.handleReadinessCheck)
	r.Get("/live", s.handleLivenessCheck)

	// Metrics
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Public pages
	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)

	// Protected pages (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/chat", s.handleChatPage)
		r.Post("/chat", s.handleChat)
		r.Post("/chat/reset", s.handleChatReset)

		r.Get("/profile", s.handleProfilePage)
		r.Post("/profile", s.handleProfileUpdate)
	})

	// HTMX endpoints (partial templates) require authentication
	r.Route("/htmx", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/advice", s.handleHTMXAdvice)
	})

	return r
}

// Start starts the web frontend HTTP server
func (s *WebServer) Start() error {
	s.logger.Info("Starting web frontend server",
		zap.String("address", s.server.Addr),
	)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the web server
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web frontend server...")
	return s.server.Shutdown(ctx)
}

// parseTemplates parses all HTML templates from the embedded filesystem
func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("3:04 PM")
		},
		"timeAgo": func(t time.Time) string {
			duration := time.Since(t)
			if duration < time.Minute {
				return "just now"
			} else if duration < time.Hour {
				return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
			} else if duration < 24*time.Hour {
				return fmt.Sprintf("%d hours ago", int(duration.Hours()))
			}
			return t.Format("Jan 2")
		},
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "..."
		},
	}

	tmpl := template.New("").Funcs(funcMap)

	err := fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}

		name := strings.TrimPrefix(path, "templates/")
		name = strings.TrimSuffix(name, ".html")

		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk templates: %w", err)
	}

	return tmpl, nil
}

// Middleware

func (s *WebServer) requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *WebServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil && routeCtx.RoutePattern() != "" {
			path = routeCtx.RoutePattern()
		}
		s.metrics.RecordRequest(r.Method, path, ww.Status(), time.Since(start))
	})
}

// securityHeadersMiddleware adds security headers to all responses
func (s *WebServer) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"object-src 'none';"
		w.Header().Set("Content-Security-Policy", csp)

		if s.config.IsProduction() {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *WebServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionStore.Get(r.Context(), r)
		if err != nil {
			session = s.sessionStore.New()
			s.sessionStore.Save(r.Context(), w, session)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth reconciles the session identity against the remote user record
// and rejects requests that cannot be tied to an active account
func (s *WebServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r.Context())

		record, err := s.reconcileUser(r.Context(), w, session)
		if err != nil {
			if r.Header.Get("HX-Request") == "true" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`<div class="error">Session expired. Please <a href="/login">login</a> again.</div>`))
				return
			}
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, record)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware implements basic per-IP rate limiting
func (s *WebServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.RemoteAddr
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP = strings.Split(xff, ",")[0]
		}

		now := time.Now()
		key := fmt.Sprintf("rate_limit:%s", clientIP)
		limit := s.config.RateLimit.RequestsPerMin

		val, _ := s.rateLimitStore.LoadOrStore(key, &rateLimitEntry{})
		entry := val.(*rateLimitEntry)

		entry.mu.Lock()
		valid := entry.requests[:0]
		for _, reqTime := range entry.requests {
			if now.Sub(reqTime) < time.Minute {
				valid = append(valid, reqTime)
			}
		}
		entry.requests = valid

		if len(entry.requests) >= limit {
			entry.mu.Unlock()
			s.logger.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		entry.requests = append(entry.requests, now)
		entry.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type rateLimitEntry struct {
	mu       sync.Mutex
	requests []time.Time
}

// cleanupRateLimits evicts idle rate limit entries periodically
func (s *WebServer) cleanupRateLimits() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.sweepRateLimits(time.Now().Add(-time.Minute))
	}
}

// sweepRateLimits drops entries whose newest request predates the cutoff
func (s *WebServer) sweepRateLimits(cutoff time.Time) {
	s.rateLimitStore.Range(func(key, val interface{}) bool {
		entry, ok := val.(*rateLimitEntry)
		if !ok {
			s.rateLimitStore.Delete(key)
			return true
		}

		entry.mu.Lock()
		idle := len(entry.requests) == 0 || entry.requests[len(entry.requests)-1].Before(cutoff)
		entry.mu.Unlock()

		if idle {
			s.rateLimitStore.Delete(key)
		}
		return true
	})
}

// Handler functions

func (s *WebServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response := s.healthCheck.Check(r.Context())

	statusCode := http.StatusOK
	if response.Status == healthcheck.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode health check response", zap.Error(err))
	}
}

func (s *WebServer) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	response := s.healthCheck.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if response.Status != healthcheck.StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "not_ready",
			"checks": response.Checks,
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

func (s *WebServer) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	if session.IsAuthenticated() {
		if _, err := s.reconcileUser(r.Context(), w, session); err == nil {
			http.Redirect(w, r, "/chat", http.StatusSeeOther)
			return
		}
	}

	s.renderTemplate(w, "home", map[string]interface{}{
		"Title": "AI Fitness Advisor",
	})
}

func (s *WebServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title": "Login - Healy",
	}
	if r.URL.Query().Get("error") == "session_expired" {
		data["Error"] = "Your session expired. Please login again."
	}
	s.renderTemplate(w, "login", data)
}

func (s *WebServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	resp, err := s.userSvc.Login(r.Context(), userapp.LoginCommand{
		Email:    email,
		Password: password,
	})
	if err != nil {
		s.renderTemplate(w, "login", map[string]interface{}{
			"Title": "Login - Healy",
			"Error": "Invalid credentials",
			"Email": email,
		})
		return
	}

	s.promoteSession(r.Context(), w, resp)

	redirect := r.URL.Query().Get("redirect")
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/chat"
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (s *WebServer) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "register", map[string]interface{}{
		"Title": "Register - Healy",
	})
}

func (s *WebServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	resp, err := s.userSvc.Register(r.Context(), userapp.RegisterCommand{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		message := "Registration failed"
		if apperrors.IsCode(err, apperrors.CodeEmailAlreadyExists) {
			message = "An account with this email already exists"
		} else if apperrors.IsCode(err, apperrors.CodeValidationFailed) {
			message = "Please check the registration details"
		}
		s.renderTemplate(w, "register", map[string]interface{}{
			"Title": "Register - Healy",
			"Error": message,
			"Name":  name,
			"Email": email,
		})
		return
	}

	// Auto-login after registration
	s.promoteSession(r.Context(), w, resp)

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// promoteSession replaces the pre-authentication session with a fresh one
// carrying the authenticated identity and its access token. The old session
// ID does not survive the privilege change.
func (s *WebServer) promoteSession(ctx context.Context, w http.ResponseWriter, resp *userapp.AuthResponse) *Session {
	if old := sessionFrom(ctx); old != nil {
		s.sessionStore.Delete(ctx, old.ID)
	}

	session := s.sessionStore.New()
	session.UserID = resp.User.ID.String()
	session.AccessToken = resp.AccessToken
	s.sessionStore.Save(ctx, w, session)

	return session
}

func (s *WebServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	session.Clear()
	s.sessionStore.Save(r.Context(), w, session)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *WebServer) handleChatPage(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	record := userFrom(r.Context())

	messages, err := s.advisorSvc.History(r.Context(), record.ID())
	if err != nil {
		s.renderError(w, "Failed to load chat history", err)
		return
	}

	s.renderTemplate(w, "chat", map[string]interface{}{
		"Title":          "AI Fitness Advisor",
		"UserName":       record.Name(),
		"Messages":       messageViews(messages),
		"UploadFilename": session.UploadFilename,
	})
}

func (s *WebServer) handleChat(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	record := userFrom(r.Context())

	message, filename, content, err := s.parseChatForm(r)
	if err == nil {
		var dataContext string
		dataContext, err = s.applyUpload(r.Context(), w, session, filename, content)
		if err == nil {
			_, err = s.advisorSvc.Advise(r.Context(), advisorapp.AdviseCommand{
				UserID:      record.ID(),
				Message:     message,
				DataContext: dataContext,
			})
		}
	}

	data := map[string]interface{}{
		"Title":          "AI Fitness Advisor",
		"UserName":       record.Name(),
		"UploadFilename": session.UploadFilename,
	}
	if err != nil {
		data["Warning"] = userFacingMessage(err)
		data["Draft"] = message
	}

	messages, histErr := s.advisorSvc.History(r.Context(), record.ID())
	if histErr != nil {
		s.renderError(w, "Failed to load chat history", histErr)
		return
	}
	data["Messages"] = messageViews(messages)

	s.renderTemplate(w, "chat", data)
}

func (s *WebServer) handleChatReset(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	record := userFrom(r.Context())

	if err := s.advisorSvc.Reset(r.Context(), record.ID()); err != nil {
		s.renderError(w, "Failed to reset conversation", err)
		return
	}

	// A new conversation starts without the previous upload attached
	session.RecordUpload("", "", "")
	s.sessionStore.Save(r.Context(), w, session)

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (s *WebServer) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	record := userFrom(r.Context())

	s.renderTemplate(w, "profile", map[string]interface{}{
		"Title":    "Profile - Healy",
		"UserName": record.Name(),
		"Email":    record.Email(),
		"Profile":  record.Profile(),
	})
}

func (s *WebServer) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	record := userFrom(r.Context())

	cmd := userapp.UpdateProfileCommand{
		Age:          formInt(r, "age"),
		HeightCM:     formFloat(r, "height_cm"),
		WeightKG:     formFloat(r, "weight_kg"),
		FitnessLevel: r.FormValue("fitness_level"),
		Goals:        splitFormList(r.FormValue("goals")),
		Injuries:     splitFormList(r.FormValue("injuries")),
	}

	if err := s.userSvc.UpdateProfile(r.Context(), record.ID(), cmd); err != nil {
		s.renderTemplate(w, "profile", map[string]interface{}{
			"Title":    "Profile - Healy",
			"UserName": record.Name(),
			"Email":    record.Email(),
			"Profile":  record.Profile(),
			"Error":    userFacingMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// handleHTMXAdvice returns the new chat bubbles as a partial fragment
func (s *WebServer) handleHTMXAdvice(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	record := userFrom(r.Context())

	message, filename, content, err := s.parseChatForm(r)
	if err != nil {
		s.renderPartialWarning(w, userFacingMessage(err))
		return
	}

	dataContext, err := s.applyUpload(r.Context(), w, session, filename, content)
	if err != nil {
		s.renderPartialWarning(w, userFacingMessage(err))
		return
	}

	result, err := s.advisorSvc.Advise(r.Context(), advisorapp.AdviseCommand{
		UserID:      record.ID(),
		Message:     message,
		DataContext: dataContext,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeEmptyQuestion) {
			s.renderPartialWarning(w, userFacingMessage(err))
			return
		}
		// Completion failures are shown inline as an advisor bubble, the
		// page itself stays up.
		s.renderPartialExchange(w, message, "Error: "+userFacingMessage(err), true)
		return
	}

	s.renderPartialExchange(w, message, result.Reply, false)
}

// Helper methods

func userFrom(ctx context.Context) *user.User {
	record, _ := ctx.Value(userContextKey).(*user.User)
	return record
}

// parseChatForm extracts the message and the optional uploaded file
func (s *WebServer) parseChatForm(r *http.Request) (message, filename string, content []byte, err error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.config.Upload.MaxFileSize); err != nil {
			if errors.Is(err, multipart.ErrMessageTooLarge) {
				return "", "", nil, apperrors.NewUploadTooLargeError(s.config.Upload.MaxFileSize)
			}
			return "", "", nil, apperrors.NewUploadUnreadableError(err)
		}

		file, header, fileErr := r.FormFile("datafile")
		if fileErr == nil {
			defer file.Close()

			data, readErr := io.ReadAll(io.LimitReader(file, s.config.Upload.MaxFileSize+1))
			if readErr != nil {
				return "", "", nil, apperrors.NewUploadUnreadableError(readErr)
			}
			if int64(len(data)) > s.config.Upload.MaxFileSize {
				return "", "", nil, apperrors.NewUploadTooLargeError(s.config.Upload.MaxFileSize)
			}

			filename = header.Filename
			content = data
		}
	}

	return r.FormValue("message"), filename, content, nil
}

// messageView is the template-facing shape of a chat message
type messageView struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

func messageViews(messages []advisor.Message) []messageView {
	views := make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = messageView{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return views
}

// userFacingMessage renders an error as UI text without leaking internals
func userFacingMessage(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.Details != "" {
			return appErr.Details
		}
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}

func (s *WebServer) renderTemplate(w http.ResponseWriter, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if data == nil {
		data = make(map[string]interface{})
	}
	if data["Title"] == nil {
		data["Title"] = "Healy"
	}
	data["AppName"] = s.config.App.Name

	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to execute template",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *WebServer) renderError(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
	s.renderTemplate(w, "error", map[string]interface{}{
		"Title":   "Error - Healy",
		"Message": message,
	})
}

func (s *WebServer) renderPartialWarning(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.renderTemplate(w, "partials/warning", map[string]interface{}{
		"Message": message,
	})
}

func (s *WebServer) renderPartialExchange(w http.ResponseWriter, question, reply string, isError bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.renderTemplate(w, "partials/exchange", map[string]interface{}{
		"Question": question,
		"Reply":    reply,
		"IsError":  isError,
		"Now":      time.Now(),
	})
}
