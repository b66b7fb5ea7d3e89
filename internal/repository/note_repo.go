package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solthron/assist-api/internal/models"
)

// SQLiteNoteRepository implements NoteRepository for SQLite/libsql.
type SQLiteNoteRepository struct {
	db *sql.DB
}

// NewSQLiteNoteRepository creates a new SQLite note repository.
func NewSQLiteNoteRepository(db *sql.DB) *SQLiteNoteRepository {
	return &SQLiteNoteRepository{db: db}
}

// Create creates a new note.
func (r *SQLiteNoteRepository) Create(ctx context.Context, note *models.Note) error {
	now := time.Now()
	if note.ID == "" {
		note.ID = ulid.Make().String()
	}
	note.CreatedAt = now
	note.LastModified = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, text, created_at, last_modified)
		VALUES (?, ?, ?, ?)
	`, note.ID, note.Text, now.Format(time.RFC3339), now.Format(time.RFC3339))
	return err
}

// GetByID retrieves a note by ID.
func (r *SQLiteNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, text, created_at, last_modified FROM notes WHERE id = ?
	`, id)
	return scanNote(row)
}

// List returns all notes, newest first.
func (r *SQLiteNoteRepository) List(ctx context.Context) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, created_at, last_modified FROM notes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// Update updates a note's text and touches last_modified.
func (r *SQLiteNoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.LastModified = time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE notes SET text = ?, last_modified = ? WHERE id = ?
	`, note.Text, note.LastModified.Format(time.RFC3339), note.ID)
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

// Delete removes a note.
func (r *SQLiteNoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var note models.Note
	var createdAt, lastModified string
	if err := row.Scan(&note.ID, &note.Text, &createdAt, &lastModified); err != nil {
		return nil, err
	}
	note.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	note.LastModified, _ = time.Parse(time.RFC3339, lastModified)
	return &note, nil
}
