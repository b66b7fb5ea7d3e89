package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/service"
)

// SessionHandler handles the per-profile session state: selected mode,
// append target and last result.
type SessionHandler struct {
	session *service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(session *service.SessionService) *SessionHandler {
	return &SessionHandler{session: session}
}

// SessionOutput wraps the session state.
type SessionOutput struct {
	Body models.Session
}

// GetSession returns the current session.
func (h *SessionHandler) GetSession(ctx context.Context, input *struct{}) (*SessionOutput, error) {
	session, err := h.session.Get(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load session")
	}
	return &SessionOutput{Body: *session}, nil
}

// PutSessionInput represents a session update.
type PutSessionInput struct {
	Body struct {
		SelectedMode string `json:"selected_mode,omitempty"`
		ActiveNoteID string `json:"active_note_id,omitempty"`
		AppendMode   bool   `json:"append_mode"`
	}
}

// PutSession replaces the mutable session fields. LastResult is not client
// writable; it is set by successful feature runs.
func (h *SessionHandler) PutSession(ctx context.Context, input *PutSessionInput) (*SessionOutput, error) {
	session, err := h.session.Get(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load session")
	}

	if input.Body.SelectedMode != "" {
		session.SelectedMode = input.Body.SelectedMode
	}
	session.ActiveNoteID = input.Body.ActiveNoteID
	session.AppendMode = input.Body.AppendMode

	if err := h.session.Put(ctx, session); err != nil {
		return nil, huma.Error500InternalServerError("failed to store session")
	}
	return &SessionOutput{Body: *session}, nil
}
