package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/solthron/assist-api/internal/crypto"
	"github.com/solthron/assist-api/internal/models"
)

// SQLiteTokenRepository implements TokenRepository for SQLite/libsql.
// The token is encrypted at rest; exactly one row exists (id = 1).
type SQLiteTokenRepository struct {
	db  *sql.DB
	enc *crypto.Encryptor
}

// NewSQLiteTokenRepository creates a new SQLite token repository.
func NewSQLiteTokenRepository(db *sql.DB, enc *crypto.Encryptor) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db, enc: enc}
}

// Save stores the active token, replacing any previous one.
func (r *SQLiteTokenRepository) Save(ctx context.Context, token *models.StoredToken) error {
	if token.AcquiredAt.IsZero() {
		token.AcquiredAt = time.Now()
	}

	encrypted, err := r.enc.Encrypt(token.Token)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO auth_token (id, token_encrypted, source, acquired_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token_encrypted = excluded.token_encrypted,
			source = excluded.source,
			acquired_at = excluded.acquired_at
	`, encrypted, token.Source, token.AcquiredAt.Format(time.RFC3339))
	return err
}

// Get returns the active token, or sql.ErrNoRows when none is stored.
func (r *SQLiteTokenRepository) Get(ctx context.Context) (*models.StoredToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token_encrypted, source, acquired_at FROM auth_token WHERE id = 1
	`)

	var encrypted, source, acquiredAt string
	if err := row.Scan(&encrypted, &source, &acquiredAt); err != nil {
		return nil, err
	}

	token, err := r.enc.Decrypt(encrypted)
	if err != nil {
		return nil, err
	}

	stored := &models.StoredToken{Token: token, Source: source}
	stored.AcquiredAt, _ = time.Parse(time.RFC3339, acquiredAt)
	return stored, nil
}

// Clear removes the active token. Clearing an empty store is not an error.
func (r *SQLiteTokenRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_token WHERE id = 1`)
	return err
}
