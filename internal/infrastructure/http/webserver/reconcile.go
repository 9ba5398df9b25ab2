package webserver

import (
	"bytes"
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/application/upload"
	"github.com/healyfit/healy/internal/domain/user"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

type contextKey int

const sessionContextKey contextKey = iota

// sessionFrom returns the session attached to the request context by the
// session middleware
func sessionFrom(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// reconcileUser merges the sources of identity: the persisted cookie, the
// live session state with its access token and the remote user record. The
// session survives only while all of them agree; an invalid token or a
// missing or deactivated remote record re-anonymizes the session.
func (s *WebServer) reconcileUser(ctx context.Context, w http.ResponseWriter, session *Session) (*user.User, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.NewUnauthorizedError("")
	}

	userID, err := uuid.Parse(session.UserID)
	if err != nil {
		// A malformed identity in the session is stale state, not a request
		// error. Reset and require a fresh login.
		s.logger.Warn("Session carried malformed user id",
			zap.String("session_id", session.ID),
			zap.String("user_id", session.UserID),
		)
		session.Clear()
		s.sessionStore.Save(ctx, w, session)
		return nil, apperrors.NewUnauthorizedError("")
	}

	claims, err := s.userSvc.ParseToken(session.AccessToken)
	if err != nil {
		// An expired or tampered token ends the session even though the
		// cookie identity still parses.
		s.logger.Info("Session token rejected",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		session.Clear()
		s.sessionStore.Save(ctx, w, session)
		return nil, apperrors.NewUnauthorizedError("")
	}

	if claims.UserID != userID {
		s.logger.Warn("Session token issued for a different identity",
			zap.String("session_user_id", session.UserID),
			zap.String("token_user_id", claims.UserID.String()),
		)
		session.Clear()
		s.sessionStore.Save(ctx, w, session)
		return nil, apperrors.NewUnauthorizedError("")
	}

	record, err := s.userSvc.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUserNotFound) {
			s.logger.Info("Remote user record gone, clearing session",
				zap.String("user_id", session.UserID),
			)
			session.Clear()
			s.sessionStore.Save(ctx, w, session)
			return nil, apperrors.NewUnauthorizedError("")
		}
		// The record may exist but the store is unreachable; keep the
		// session and surface the failure.
		return nil, err
	}

	if !record.IsActive() {
		session.Clear()
		s.sessionStore.Save(ctx, w, session)
		return nil, apperrors.NewAccountDeactivatedError()
	}

	return record, nil
}

// applyUpload decides whether the uploaded file is a new upload event and
// processes it exactly once. A re-submitted file with unchanged content
// reuses the cached summary; changed content or a new filename is a new
// event. Returns the data context to attach to the advice request.
func (s *WebServer) applyUpload(ctx context.Context, w http.ResponseWriter, session *Session, filename string, content []byte) (string, error) {
	if filename == "" || len(content) == 0 {
		// No file on this request; any previously processed upload stays
		// attached to the conversation.
		return session.DataContext, nil
	}

	fingerprint := upload.Fingerprint(filename, content)
	if !session.NeedsUploadProcessing(fingerprint) {
		s.logger.Debug("Reusing processed upload",
			zap.String("filename", filename),
			zap.String("fingerprint", fingerprint),
		)
		return session.DataContext, nil
	}

	summary, err := s.summarizer.Summarize(filename, bytes.NewReader(content))
	if err != nil {
		return "", err
	}

	session.RecordUpload(summary.Fingerprint, summary.Filename, summary.ContextText())
	s.sessionStore.Save(ctx, w, session)

	return session.DataContext, nil
}
