package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/christianyates/DrupalGeoPicture/internal/repository"
)

// ErrWrongCredentials carries the exact message the mobile client shows.
var ErrWrongCredentials = errors.New("Wrong username or password.")

// AnonymousUID marks sessions that are not logged in.
const AnonymousUID = 0

// SessionInfo is what connect and login hand back to the transport layer.
type SessionInfo struct {
	SessionID   string
	SessionName string
	UID         int
	Name        string
}

// Connect resolves the session behind sessionID, creating a fresh
// anonymous session when the ID is empty or unknown.
func (s *Service) Connect(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if sessionID != "" {
		sess, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		if sess != nil {
			return s.describe(ctx, sess)
		}
	}
	return s.newSession(ctx, AnonymousUID, "")
}

// Login verifies the credentials and opens an authenticated session.
func (s *Service) Login(ctx context.Context, name, pass string) (*SessionInfo, error) {
	acct, err := s.store.GetAccountByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if acct == nil || acct.Pass != pass {
		return nil, ErrWrongCredentials
	}
	return s.newSession(ctx, acct.UID, acct.Name)
}

// Logout discards the session. Unknown IDs are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate returns the session behind sessionID, or nil when the
// ID is unknown or anonymous.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil || sess.UID == AnonymousUID {
		return nil, nil
	}
	return s.describe(ctx, sess)
}

func (s *Service) newSession(ctx context.Context, uid int, name string) (*SessionInfo, error) {
	id := uuid.New().String()
	sess := &repository.Session{
		SessionID:   id,
		SessionName: sessionName(id),
		UID:         uid,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &SessionInfo{SessionID: sess.SessionID, SessionName: sess.SessionName, UID: uid, Name: name}, nil
}

func (s *Service) describe(ctx context.Context, sess *repository.Session) (*SessionInfo, error) {
	info := &SessionInfo{SessionID: sess.SessionID, SessionName: sess.SessionName, UID: sess.UID}
	if sess.UID != AnonymousUID {
		acct, err := s.store.GetAccount(ctx, sess.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		if acct != nil {
			info.Name = acct.Name
		}
	}
	return info, nil
}

// sessionName derives the cookie name the client echoes back. The SESS
// prefix is what the transport layer scans request cookies for.
func sessionName(sessionID string) string {
	compact := strings.ReplaceAll(sessionID, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "SESS" + compact
}
