package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solthron/assist-api/internal/models"
)

// SQLitePersonaRepository implements PersonaRepository for SQLite/libsql.
// Only user-saved personas reach this table.
type SQLitePersonaRepository struct {
	db *sql.DB
}

// NewSQLitePersonaRepository creates a new SQLite persona repository.
func NewSQLitePersonaRepository(db *sql.DB) *SQLitePersonaRepository {
	return &SQLitePersonaRepository{db: db}
}

// Create creates a new persona.
func (r *SQLitePersonaRepository) Create(ctx context.Context, persona *models.Persona) error {
	now := time.Now()
	if persona.ID == "" {
		persona.ID = ulid.Make().String()
	}
	if persona.Source == "" {
		persona.Source = models.PersonaUserSaved
	}
	persona.CreatedAt = now
	persona.LastModified = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO personas (id, title, prompt, example, response, source, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		persona.ID,
		persona.Title,
		persona.Prompt,
		persona.Example,
		persona.Response,
		string(persona.Source),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves a persona by ID.
func (r *SQLitePersonaRepository) GetByID(ctx context.Context, id string) (*models.Persona, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, prompt, example, response, source, created_at, last_modified
		FROM personas WHERE id = ?
	`, id)
	return scanPersona(row)
}

// List returns all saved personas, newest first.
func (r *SQLitePersonaRepository) List(ctx context.Context) ([]*models.Persona, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, prompt, example, response, source, created_at, last_modified
		FROM personas ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personas []*models.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// Update updates a persona and touches last_modified.
func (r *SQLitePersonaRepository) Update(ctx context.Context, persona *models.Persona) error {
	persona.LastModified = time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE personas SET title = ?, prompt = ?, example = ?, response = ?, last_modified = ?
		WHERE id = ?
	`,
		persona.Title,
		persona.Prompt,
		persona.Example,
		persona.Response,
		persona.LastModified.Format(time.RFC3339),
		persona.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a persona.
func (r *SQLitePersonaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanPersona(row rowScanner) (*models.Persona, error) {
	var p models.Persona
	var source, createdAt, lastModified string
	if err := row.Scan(&p.ID, &p.Title, &p.Prompt, &p.Example, &p.Response, &source, &createdAt, &lastModified); err != nil {
		return nil, err
	}
	p.Source = models.PersonaSource(source)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.LastModified, _ = time.Parse(time.RFC3339, lastModified)
	return &p, nil
}
