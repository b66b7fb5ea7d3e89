package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250901-000000",
		Description: "Initial schema",
		Up: []string{
			// Key/value storage, two scopes mirroring the browser's
			// device-local and account-synced stores.
			`CREATE TABLE IF NOT EXISTS kv_store (
				scope TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (scope, key)
			)`,

			// Saved notes (local scope)
			`CREATE TABLE IF NOT EXISTS notes (
				id TEXT PRIMARY KEY,
				text TEXT NOT NULL,
				created_at TEXT NOT NULL,
				last_modified TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at)`,

			// Saved prompts (sync scope)
			`CREATE TABLE IF NOT EXISTS prompts (
				id TEXT PRIMARY KEY,
				text TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_prompts_created_at ON prompts(created_at)`,

			// Persona templates (user-saved only; built-ins ship in code)
			`CREATE TABLE IF NOT EXISTS personas (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				prompt TEXT NOT NULL,
				example TEXT,
				response TEXT,
				source TEXT NOT NULL DEFAULT 'user_saved',
				created_at TEXT NOT NULL,
				last_modified TEXT NOT NULL
			)`,

			// Single-row auth token, encrypted at rest
			`CREATE TABLE IF NOT EXISTS auth_token (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				token_encrypted TEXT NOT NULL,
				source TEXT,
				acquired_at TEXT NOT NULL
			)`,
		},
	})
}
