package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/solthron/assist-api/internal/constants"
	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/repository"
)

// sessionKey is where the session state lives in the local KV scope.
const sessionKey = "session"

// SessionService persists the per-profile UI session: the selected mode,
// the note-append target and the last result. The predecessor kept these
// as script globals that vanished on every page load.
type SessionService struct {
	kv     repository.KVRepository
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(kv repository.KVRepository, logger *slog.Logger) *SessionService {
	return &SessionService{kv: kv, logger: logger}
}

// Get returns the current session, or a default one when none is stored.
func (s *SessionService) Get(ctx context.Context) (*models.Session, error) {
	raw, ok, err := s.kv.Get(ctx, repository.ScopeLocal, sessionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaultSession(), nil
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Warn("stored session unreadable, resetting", "error", err)
		return defaultSession(), nil
	}
	if session.SelectedMode == "" {
		session.SelectedMode = string(constants.FeatureReframeCasual)
	}
	return &session, nil
}

// Put stores the session.
func (s *SessionService) Put(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, repository.ScopeLocal, sessionKey, string(raw))
}

// SetLastResult records the most recent successful output.
func (s *SessionService) SetLastResult(ctx context.Context, result string) error {
	session, err := s.Get(ctx)
	if err != nil {
		return err
	}
	session.LastResult = result
	return s.Put(ctx, session)
}

func defaultSession() *models.Session {
	// The default mode tracks the extension's default selection.
	return &models.Session{SelectedMode: string(constants.FeatureReframeCasual)}
}
