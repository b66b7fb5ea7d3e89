package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/repository"
)

// ErrBuiltInPersona rejects writes against built-in persona templates.
var ErrBuiltInPersona = errors.New("built-in personas cannot be modified")

// LibraryService manages the saved library: notes, prompts and personas.
type LibraryService struct {
	repos   *repository.Repositories
	session *SessionService
	logger  *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(repos *repository.Repositories, session *SessionService, logger *slog.Logger) *LibraryService {
	return &LibraryService{repos: repos, session: session, logger: logger}
}

// SaveNote saves text as a note. When the session has append mode on and
// an active note set, the text is appended to that note as a new paragraph
// instead; a vanished active note falls back to creating a fresh one.
func (s *LibraryService) SaveNote(ctx context.Context, text string) (*models.Note, error) {
	session, err := s.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	if session.AppendMode && session.ActiveNoteID != "" {
		note, err := s.repos.Note.GetByID(ctx, session.ActiveNoteID)
		if err == nil {
			note.Text += "\n\n" + text
			if err := s.repos.Note.Update(ctx, note); err != nil {
				return nil, fmt.Errorf("failed to append to note: %w", err)
			}
			return note, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		s.logger.Warn("active note vanished, creating new note", "note_id", session.ActiveNoteID)
	}

	note := &models.Note{Text: text}
	if err := s.repos.Note.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return note, nil
}

// AppendNote appends text to a specific note as a new paragraph.
func (s *LibraryService) AppendNote(ctx context.Context, id, text string) (*models.Note, error) {
	note, err := s.repos.Note.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Text += "\n\n" + text
	if err := s.repos.Note.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to append to note: %w", err)
	}
	return note, nil
}

// Notes lists all saved notes.
func (s *LibraryService) Notes(ctx context.Context) ([]*models.Note, error) {
	return s.repos.Note.List(ctx)
}

// DeleteNote removes a note, clearing it as append target if active.
func (s *LibraryService) DeleteNote(ctx context.Context, id string) error {
	if err := s.repos.Note.Delete(ctx, id); err != nil {
		return err
	}

	session, err := s.session.Get(ctx)
	if err != nil {
		return nil
	}
	if session.ActiveNoteID == id {
		session.ActiveNoteID = ""
		session.AppendMode = false
		if err := s.session.Put(ctx, session); err != nil {
			s.logger.Warn("failed to clear active note from session", "error", err)
		}
	}
	return nil
}

// SavePrompt saves text as a reusable prompt.
func (s *LibraryService) SavePrompt(ctx context.Context, text string) (*models.Prompt, error) {
	prompt := &models.Prompt{Text: text}
	if err := s.repos.Prompt.Create(ctx, prompt); err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}
	return prompt, nil
}

// Prompts lists all saved prompts.
func (s *LibraryService) Prompts(ctx context.Context) ([]*models.Prompt, error) {
	return s.repos.Prompt.List(ctx)
}

// DeletePrompt removes a saved prompt.
func (s *LibraryService) DeletePrompt(ctx context.Context, id string) error {
	return s.repos.Prompt.Delete(ctx, id)
}

// SavePersona saves text as a persona template, deriving a title from the
// text itself.
func (s *LibraryService) SavePersona(ctx context.Context, text string) (*models.Persona, error) {
	persona := &models.Persona{
		Title:    ExtractPersonaTitle(text),
		Prompt:   text,
		Example:  "Acting with this custom persona",
		Response: "I'm ready to help with my specialized expertise.",
		Source:   models.PersonaUserSaved,
	}
	if err := s.repos.Persona.Create(ctx, persona); err != nil {
		return nil, fmt.Errorf("failed to save persona: %w", err)
	}
	return persona, nil
}

// Personas lists persona templates, built-ins first.
func (s *LibraryService) Personas(ctx context.Context) ([]*models.Persona, error) {
	saved, err := s.repos.Persona.List(ctx)
	if err != nil {
		return nil, err
	}
	return append(builtInPersonas(), saved...), nil
}

// DeletePersona removes a user-saved persona. Built-ins are refused.
func (s *LibraryService) DeletePersona(ctx context.Context, id string) error {
	for _, p := range builtInPersonas() {
		if p.ID == id {
			return ErrBuiltInPersona
		}
	}
	return s.repos.Persona.Delete(ctx, id)
}

var personaTitleCleanRE = regexp.MustCompile(`[^\w\s]`)

// ExtractPersonaTitle derives a display title from persona text: a "You
// are ..." line wins, then a line naming a specialist, expert or
// consultant. Falls back to "Custom Persona".
func ExtractPersonaTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "You are") && len(line) > 10 && len(line) < 100 {
			title := strings.Replace(line, "You are", "", 1)
			title = strings.TrimSpace(personaTitleCleanRE.ReplaceAllString(title, ""))
			if title == "" {
				continue
			}
			title = strings.ToUpper(title[:1]) + title[1:]
			return capTitle(title)
		}

		if strings.Contains(line, "specialist") || strings.Contains(line, "expert") || strings.Contains(line, "consultant") {
			title := strings.TrimSpace(personaTitleCleanRE.ReplaceAllString(line, ""))
			if title == "" {
				continue
			}
			return capTitle(title)
		}
	}
	return "Custom Persona"
}

func capTitle(title string) string {
	if len(title) > 50 {
		return title[:50] + "..."
	}
	return title
}

// builtInPersonas returns the persona templates that ship with the app.
// They are prepended to every listing and cannot be deleted.
func builtInPersonas() []*models.Persona {
	now := time.Now()
	return []*models.Persona{
		{
			ID:        "ceo-exec",
			Title:     "CEO / Executive Persona",
			Prompt:    `You are a visionary CEO known for making bold decisions and leading organizations to success. Your communication is concise, strategic, and focuses on high-level outcomes. Use business terminology like "market expansion," "revenue growth," and "operational efficiency." Prioritize actionable insights over theory. Avoid unnecessary small talk. Always conclude your responses with a summary and key takeaways.`,
			Example:   "Our company is facing declining user engagement. What should we do?",
			Response:  "Declining engagement suggests issues in product-market fit, value proposition, or competitive positioning. Three key areas to address:\n1. User Feedback Loop – Conduct targeted surveys and analyze churn data.\n2. Product Enhancement – Invest in AI-driven personalization and UX optimization.\n3. Marketing Strategy – Shift focus to retention campaigns rather than pure acquisition.\n\nKey Takeaway: Addressing engagement decline requires a data-backed approach to customer experience and value delivery.",
			Source:    models.PersonaBuiltIn,
			CreatedAt: now,
		},
	}
}
