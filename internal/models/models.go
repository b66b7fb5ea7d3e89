// Package models defines the domain models for the application. Library
// items (notes, prompts, personas) are single-user: there is no user id,
// the engine serves one extension profile.
package models

import "time"

// Note is a saved text snippet. Notes support appending: the session's
// active note receives appended text instead of a new row being created.
type Note struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"timestamp"`
	LastModified time.Time `json:"last_modified"`
}

// Prompt is a saved prompt snippet. Prompts live in the sync storage scope
// so they follow the user's account across devices.
type Prompt struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// PersonaSource distinguishes built-in templates from user-saved personas.
// Built-ins cannot be deleted.
type PersonaSource string

const (
	PersonaBuiltIn   PersonaSource = "built_in"
	PersonaUserSaved PersonaSource = "user_saved"
)

// Persona is a saved AI persona template.
type Persona struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Prompt       string        `json:"prompt"`
	Example      string        `json:"example"`
	Response     string        `json:"response"`
	Source       PersonaSource `json:"source"`
	CreatedAt    time.Time     `json:"timestamp"`
	LastModified time.Time     `json:"last_modified"`
}

// StoredToken is the persisted auth token with its acquisition metadata.
// Exactly one token is active at a time.
type StoredToken struct {
	Token      string    `json:"-"`
	Source     string    `json:"source"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Session is the explicit per-profile session state that replaces the
// predecessor's module-level globals. SelectedMode is the feature the next
// user action runs; ActiveNoteID plus AppendMode drive note appending.
type Session struct {
	SelectedMode string    `json:"selected_mode"`
	ActiveNoteID string    `json:"active_note_id,omitempty"`
	AppendMode   bool      `json:"append_mode"`
	LastResult   string    `json:"last_result,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
