package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solthron/assist-api/internal/models"
)

// SQLitePromptRepository implements PromptRepository for SQLite/libsql.
type SQLitePromptRepository struct {
	db *sql.DB
}

// NewSQLitePromptRepository creates a new SQLite prompt repository.
func NewSQLitePromptRepository(db *sql.DB) *SQLitePromptRepository {
	return &SQLitePromptRepository{db: db}
}

// Create creates a new saved prompt.
func (r *SQLitePromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = ulid.Make().String()
	}
	prompt.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompts (id, text, created_at) VALUES (?, ?, ?)
	`, prompt.ID, prompt.Text, prompt.CreatedAt.Format(time.RFC3339))
	return err
}

// List returns all saved prompts, newest first.
func (r *SQLitePromptRepository) List(ctx context.Context) ([]*models.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, created_at FROM prompts ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*models.Prompt
	for rows.Next() {
		var p models.Prompt
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Text, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		prompts = append(prompts, &p)
	}
	return prompts, rows.Err()
}

// Delete removes a saved prompt.
func (r *SQLitePromptRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
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
