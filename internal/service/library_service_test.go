package service

import (
	"context"
	"strings"
	"testing"

	"github.com/solthron/assist-api/internal/models"
)

func newTestLibrary(t *testing.T) (*LibraryService, *SessionService) {
	t.Helper()
	repos := memRepos()
	session := NewSessionService(repos.KV, testLogger())
	return NewLibraryService(repos, session, testLogger()), session
}

func TestSaveNoteCreates(t *testing.T) {
	lib, _ := newTestLibrary(t)

	note, err := lib.SaveNote(context.Background(), "a fresh note")
	if err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}
	if note.ID == "" || note.Text != "a fresh note" {
		t.Errorf("note = %+v", note)
	}
}

func TestSaveNoteAppendsToActiveNote(t *testing.T) {
	lib, session := newTestLibrary(t)
	ctx := context.Background()

	first, err := lib.SaveNote(ctx, "first paragraph")
	if err != nil {
		t.Fatal(err)
	}

	s, _ := session.Get(ctx)
	s.AppendMode = true
	s.ActiveNoteID = first.ID
	if err := session.Put(ctx, s); err != nil {
		t.Fatal(err)
	}

	appended, err := lib.SaveNote(ctx, "second paragraph")
	if err != nil {
		t.Fatal(err)
	}
	if appended.ID != first.ID {
		t.Fatal("append created a new note instead of extending the active one")
	}
	if appended.Text != "first paragraph\n\nsecond paragraph" {
		t.Errorf("Text = %q", appended.Text)
	}

	notes, _ := lib.Notes(ctx)
	if len(notes) != 1 {
		t.Errorf("got %d notes, want 1", len(notes))
	}
}

func TestAppendNoteByID(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	note, err := lib.SaveNote(ctx, "base")
	if err != nil {
		t.Fatal(err)
	}

	appended, err := lib.AppendNote(ctx, note.ID, "extra")
	if err != nil {
		t.Fatalf("AppendNote() error = %v", err)
	}
	if appended.Text != "base\n\nextra" {
		t.Errorf("Text = %q", appended.Text)
	}

	if _, err := lib.AppendNote(ctx, "no-such-note", "x"); err == nil {
		t.Error("expected error appending to missing note")
	}
}

func TestSaveNoteFallsBackWhenActiveNoteGone(t *testing.T) {
	lib, session := newTestLibrary(t)
	ctx := context.Background()

	s, _ := session.Get(ctx)
	s.AppendMode = true
	s.ActiveNoteID = "no-such-note"
	if err := session.Put(ctx, s); err != nil {
		t.Fatal(err)
	}

	note, err := lib.SaveNote(ctx, "orphan text")
	if err != nil {
		t.Fatalf("SaveNote() error = %v", err)
	}
	if note.Text != "orphan text" {
		t.Errorf("Text = %q", note.Text)
	}
}

func TestDeleteNoteClearsAppendTarget(t *testing.T) {
	lib, session := newTestLibrary(t)
	ctx := context.Background()

	note, _ := lib.SaveNote(ctx, "target")
	s, _ := session.Get(ctx)
	s.AppendMode = true
	s.ActiveNoteID = note.ID
	session.Put(ctx, s)

	if err := lib.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}

	s, _ = session.Get(ctx)
	if s.AppendMode || s.ActiveNoteID != "" {
		t.Errorf("session still targets deleted note: %+v", s)
	}
}

func TestPersonasIncludeBuiltIns(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	if _, err := lib.SavePersona(ctx, "You are a patient math tutor who explains slowly."); err != nil {
		t.Fatal(err)
	}

	personas, err := lib.Personas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want built-in + saved", len(personas))
	}
	if personas[0].ID != "ceo-exec" || personas[0].Source != models.PersonaBuiltIn {
		t.Errorf("built-in not first: %+v", personas[0])
	}
	if personas[1].Source != models.PersonaUserSaved {
		t.Errorf("saved persona source = %q", personas[1].Source)
	}
}

func TestDeletePersonaRefusesBuiltIn(t *testing.T) {
	lib, _ := newTestLibrary(t)

	if err := lib.DeletePersona(context.Background(), "ceo-exec"); err != ErrBuiltInPersona {
		t.Errorf("DeletePersona(built-in) = %v, want ErrBuiltInPersona", err)
	}
}

func TestExtractPersonaTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"you are line",
			"You are a seasoned copy editor with a sharp eye.\nMore detail here.",
			"A seasoned copy editor with a sharp eye",
		},
		{
			"specialist line",
			"Marketing specialist focused on B2B growth\nrest of prompt",
			"Marketing specialist focused on B2B growth",
		},
		{
			"expert line",
			"An expert in maritime law",
			"An expert in maritime law",
		},
		{
			"no match",
			"Respond briefly and kindly.",
			"Custom Persona",
		},
		{
			"long title capped",
			"You are " + strings.Repeat("very ", 12) + "thorough reviewer",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPersonaTitle(tt.text)
			if tt.want == "" {
				if len(got) > 53 || !strings.HasSuffix(got, "...") {
					t.Errorf("capped title = %q (len %d)", got, len(got))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractPersonaTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSavePromptAndList(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	saved, err := lib.SavePrompt(ctx, "summarize this thread")
	if err != nil {
		t.Fatal(err)
	}

	prompts, err := lib.Prompts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(prompts) != 1 || prompts[0].ID != saved.ID {
		t.Errorf("prompts = %+v", prompts)
	}

	if err := lib.DeletePrompt(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	prompts, _ = lib.Prompts(ctx)
	if len(prompts) != 0 {
		t.Error("prompt not deleted")
	}
}
