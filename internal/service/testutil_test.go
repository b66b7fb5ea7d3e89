package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solthron/assist-api/internal/config"
	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memKV is an in-memory KVRepository.
type memKV struct {
	mu       sync.Mutex
	data     map[repository.Scope]map[string]string
	watchers map[string][]func(repository.Scope, string)
}

func newMemKV() *memKV {
	return &memKV{
		data:     map[repository.Scope]map[string]string{},
		watchers: map[string][]func(repository.Scope, string){},
	}
}

func (m *memKV) Get(ctx context.Context, scope repository.Scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[scope][key]
	return v, ok, nil
}

func (m *memKV) Set(ctx context.Context, scope repository.Scope, key, value string) error {
	m.mu.Lock()
	if m.data[scope] == nil {
		m.data[scope] = map[string]string{}
	}
	m.data[scope][key] = value
	fns := m.watchers[key]
	m.mu.Unlock()
	for _, fn := range fns {
		fn(scope, value)
	}
	return nil
}

func (m *memKV) Delete(ctx context.Context, scope repository.Scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[scope], key)
	return nil
}

func (m *memKV) Keys(ctx context.Context, scope repository.Scope) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data[scope] {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memKV) Watch(key string, fn func(repository.Scope, string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers[key] = append(m.watchers[key], fn)
}

// memTokens is an in-memory TokenRepository.
type memTokens struct {
	mu     sync.Mutex
	stored *models.StoredToken
}

func (m *memTokens) Save(ctx context.Context, token *models.StoredToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = token
	return nil
}

func (m *memTokens) Get(ctx context.Context) (*models.StoredToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	return m.stored, nil
}

func (m *memTokens) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

// memNotes is an in-memory NoteRepository.
type memNotes struct {
	mu    sync.Mutex
	notes map[string]*models.Note
}

func newMemNotes() *memNotes { return &memNotes{notes: map[string]*models.Note{}} }

func (m *memNotes) Create(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if note.ID == "" {
		note.ID = ulid.Make().String()
	}
	note.CreatedAt = time.Now()
	note.LastModified = note.CreatedAt
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *memNotes) GetByID(ctx context.Context, id string) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *note
	return &copied, nil
}

func (m *memNotes) List(ctx context.Context) ([]*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Note
	for _, n := range m.notes {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memNotes) Update(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; !ok {
		return sql.ErrNoRows
	}
	note.LastModified = time.Now()
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *memNotes) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

// memPersonas is an in-memory PersonaRepository.
type memPersonas struct {
	mu       sync.Mutex
	personas map[string]*models.Persona
	order    []string
}

func newMemPersonas() *memPersonas { return &memPersonas{personas: map[string]*models.Persona{}} }

func (m *memPersonas) Create(ctx context.Context, p *models.Persona) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	if p.Source == "" {
		p.Source = models.PersonaUserSaved
	}
	copied := *p
	m.personas[p.ID] = &copied
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memPersonas) GetByID(ctx context.Context, id string) (*models.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.personas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *memPersonas) List(ctx context.Context) ([]*models.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Persona
	for _, id := range m.order {
		if p, ok := m.personas[id]; ok {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memPersonas) Update(ctx context.Context, p *models.Persona) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.personas[p.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *p
	m.personas[p.ID] = &copied
	return nil
}

func (m *memPersonas) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.personas[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.personas, id)
	return nil
}

// memPrompts is an in-memory PromptRepository.
type memPrompts struct {
	mu      sync.Mutex
	prompts []*models.Prompt
}

func (m *memPrompts) Create(ctx context.Context, p *models.Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = ulid.Make().String()
	}
	p.CreatedAt = time.Now()
	copied := *p
	m.prompts = append(m.prompts, &copied)
	return nil
}

func (m *memPrompts) List(ctx context.Context) ([]*models.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out, nil
}

func (m *memPrompts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.prompts {
		if p.ID == id {
			m.prompts = append(m.prompts[:i], m.prompts[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func memRepos() *repository.Repositories {
	return &repository.Repositories{
		KV:      newMemKV(),
		Note:    newMemNotes(),
		Prompt:  &memPrompts{},
		Persona: newMemPersonas(),
		Token:   &memTokens{},
	}
}

// newTestServices builds the full service graph against a test backend URL.
func newTestServices(backendURL string, repos *repository.Repositories) *Services {
	cfg := &config.Config{
		BackendURL:      backendURL,
		BackendTimeout:  2 * time.Second,
		TokenScanDelays: []time.Duration{time.Hour},
	}
	svcs, err := NewServices(cfg, repos, testLogger())
	if err != nil {
		panic(err)
	}
	return svcs
}
