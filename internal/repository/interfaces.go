// Package repository defines repository interfaces for data access.
// Storage is single-profile: the engine persists one extension profile's
// state, so there is no user id on any row.
package repository

import (
	"context"
	"database/sql"

	"github.com/solthron/assist-api/internal/crypto"
	"github.com/solthron/assist-api/internal/models"
)

// Scope selects one of the two key/value stores. Local data stays on the
// device; sync data follows the account (via the embedded replica).
type Scope string

const (
	ScopeLocal Scope = "local"
	ScopeSync  Scope = "sync"
)

// KVRepository is generic scoped key/value storage with change
// notification for watched keys.
type KVRepository interface {
	Get(ctx context.Context, scope Scope, key string) (string, bool, error)
	Set(ctx context.Context, scope Scope, key, value string) error
	Delete(ctx context.Context, scope Scope, key string) error
	Keys(ctx context.Context, scope Scope) ([]string, error)
	// Watch registers a callback fired after every successful Set on the
	// given key, in any scope. Callbacks run synchronously on the writing
	// goroutine.
	Watch(key string, fn func(scope Scope, value string))
}

// NoteRepository stores saved notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

// PromptRepository stores saved prompts (sync scope).
type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	List(ctx context.Context) ([]*models.Prompt, error)
	Delete(ctx context.Context, id string) error
}

// PersonaRepository stores user-saved personas. Built-in templates live in
// code and are prepended at the service layer.
type PersonaRepository interface {
	Create(ctx context.Context, persona *models.Persona) error
	GetByID(ctx context.Context, id string) (*models.Persona, error)
	List(ctx context.Context) ([]*models.Persona, error)
	Update(ctx context.Context, persona *models.Persona) error
	Delete(ctx context.Context, id string) error
}

// TokenRepository stores the single active auth token, encrypted at rest.
type TokenRepository interface {
	Save(ctx context.Context, token *models.StoredToken) error
	Get(ctx context.Context) (*models.StoredToken, error)
	Clear(ctx context.Context) error
}

// Repositories aggregates all repository instances.
type Repositories struct {
	KV      KVRepository
	Note    NoteRepository
	Prompt  PromptRepository
	Persona PersonaRepository
	Token   TokenRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB, enc *crypto.Encryptor) *Repositories {
	return &Repositories{
		KV:      NewSQLiteKVRepository(db),
		Note:    NewSQLiteNoteRepository(db),
		Prompt:  NewSQLitePromptRepository(db),
		Persona: NewSQLitePersonaRepository(db),
		Token:   NewSQLiteTokenRepository(db, enc),
	}
}
