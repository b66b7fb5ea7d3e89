package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// SQLiteKVRepository implements KVRepository for SQLite/libsql.
type SQLiteKVRepository struct {
	db *sql.DB

	mu       sync.RWMutex
	watchers map[string][]func(Scope, string)
}

// NewSQLiteKVRepository creates a new SQLite key/value repository.
func NewSQLiteKVRepository(db *sql.DB) *SQLiteKVRepository {
	return &SQLiteKVRepository{
		db:       db,
		watchers: make(map[string][]func(Scope, string)),
	}
}

// Get retrieves a value. The second return is false when the key is absent.
func (r *SQLiteKVRepository) Get(ctx context.Context, scope Scope, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE scope = ? AND key = ?
	`, string(scope), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts a value and fires any watchers registered for the key.
func (r *SQLiteKVRepository) Set(ctx context.Context, scope Scope, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_store (scope, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, string(scope), key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	r.mu.RLock()
	fns := r.watchers[key]
	r.mu.RUnlock()
	for _, fn := range fns {
		fn(scope, value)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (r *SQLiteKVRepository) Delete(ctx context.Context, scope Scope, key string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM kv_store WHERE scope = ? AND key = ?
	`, string(scope), key)
	return err
}

// Keys lists all keys in a scope.
func (r *SQLiteKVRepository) Keys(ctx context.Context, scope Scope) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key FROM kv_store WHERE scope = ? ORDER BY key
	`, string(scope))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Watch registers a callback for writes to the given key.
func (r *SQLiteKVRepository) Watch(key string, fn func(Scope, string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers[key] = append(r.watchers[key], fn)
}
