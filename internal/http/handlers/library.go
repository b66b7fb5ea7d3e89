package handlers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/service"
)

// LibraryHandler handles the saved-content library: notes, prompts and
// personas. All library operations are free.
type LibraryHandler struct {
	library *service.LibraryService
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// SaveTextInput is the shared request body for saving notes, prompts and
// personas: just the text.
type SaveTextInput struct {
	Body struct {
		Text string `json:"text" minLength:"1"`
	}
}

// DeleteByIDInput identifies a library item by path id.
type DeleteByIDInput struct {
	ID string `path:"id"`
}

// --- Notes ---

// NoteOutput wraps a single note.
type NoteOutput struct {
	Body models.Note
}

// ListNotesOutput wraps the note listing.
type ListNotesOutput struct {
	Body struct {
		Notes []*models.Note `json:"notes"`
	}
}

// SaveNote saves a note, appending to the session's active note when append
// mode is on.
func (h *LibraryHandler) SaveNote(ctx context.Context, input *SaveTextInput) (*NoteOutput, error) {
	note, err := h.library.SaveNote(ctx, input.Body.Text)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to save note")
	}
	return &NoteOutput{Body: *note}, nil
}

// AppendNoteInput targets a note for a paragraph append.
type AppendNoteInput struct {
	ID   string `path:"id"`
	Body struct {
		Text string `json:"text" minLength:"1"`
	}
}

// AppendNote appends text to an existing note as a new paragraph.
func (h *LibraryHandler) AppendNote(ctx context.Context, input *AppendNoteInput) (*NoteOutput, error) {
	note, err := h.library.AppendNote(ctx, input.ID, input.Body.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, huma.Error404NotFound("note not found")
		}
		return nil, huma.Error500InternalServerError("failed to append to note")
	}
	return &NoteOutput{Body: *note}, nil
}

// ListNotes returns all saved notes.
func (h *LibraryHandler) ListNotes(ctx context.Context, input *struct{}) (*ListNotesOutput, error) {
	notes, err := h.library.Notes(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list notes")
	}
	out := &ListNotesOutput{}
	out.Body.Notes = notes
	return out, nil
}

// DeleteNote deletes a note by id.
func (h *LibraryHandler) DeleteNote(ctx context.Context, input *DeleteByIDInput) (*struct{}, error) {
	if err := h.library.DeleteNote(ctx, input.ID); err != nil {
		return nil, mapLibraryError(err, "note")
	}
	return &struct{}{}, nil
}

// --- Prompts ---

// PromptOutput wraps a single prompt.
type PromptOutput struct {
	Body models.Prompt
}

// ListPromptsOutput wraps the prompt listing.
type ListPromptsOutput struct {
	Body struct {
		Prompts []*models.Prompt `json:"prompts"`
	}
}

// SavePrompt saves a prompt snippet.
func (h *LibraryHandler) SavePrompt(ctx context.Context, input *SaveTextInput) (*PromptOutput, error) {
	prompt, err := h.library.SavePrompt(ctx, input.Body.Text)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to save prompt")
	}
	return &PromptOutput{Body: *prompt}, nil
}

// ListPrompts returns all saved prompts.
func (h *LibraryHandler) ListPrompts(ctx context.Context, input *struct{}) (*ListPromptsOutput, error) {
	prompts, err := h.library.Prompts(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list prompts")
	}
	out := &ListPromptsOutput{}
	out.Body.Prompts = prompts
	return out, nil
}

// DeletePrompt deletes a prompt by id.
func (h *LibraryHandler) DeletePrompt(ctx context.Context, input *DeleteByIDInput) (*struct{}, error) {
	if err := h.library.DeletePrompt(ctx, input.ID); err != nil {
		return nil, mapLibraryError(err, "prompt")
	}
	return &struct{}{}, nil
}

// --- Personas ---

// PersonaOutput wraps a single persona.
type PersonaOutput struct {
	Body models.Persona
}

// ListPersonasOutput wraps the persona listing, built-ins first.
type ListPersonasOutput struct {
	Body struct {
		Personas []*models.Persona `json:"personas"`
	}
}

// SavePersona saves a persona, deriving its title from the prompt text.
func (h *LibraryHandler) SavePersona(ctx context.Context, input *SaveTextInput) (*PersonaOutput, error) {
	persona, err := h.library.SavePersona(ctx, input.Body.Text)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to save persona")
	}
	return &PersonaOutput{Body: *persona}, nil
}

// ListPersonas returns built-in and saved personas.
func (h *LibraryHandler) ListPersonas(ctx context.Context, input *struct{}) (*ListPersonasOutput, error) {
	personas, err := h.library.Personas(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list personas")
	}
	out := &ListPersonasOutput{}
	out.Body.Personas = personas
	return out, nil
}

// DeletePersona deletes a user-saved persona. Built-ins are immutable.
func (h *LibraryHandler) DeletePersona(ctx context.Context, input *DeleteByIDInput) (*struct{}, error) {
	if err := h.library.DeletePersona(ctx, input.ID); err != nil {
		if errors.Is(err, service.ErrBuiltInPersona) {
			return nil, huma.Error403Forbidden("built-in personas cannot be deleted")
		}
		return nil, mapLibraryError(err, "persona")
	}
	return &struct{}{}, nil
}

func mapLibraryError(err error, kind string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return huma.Error404NotFound(kind + " not found")
	}
	return huma.Error500InternalServerError("failed to delete " + kind)
}
