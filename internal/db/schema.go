package db

import (
	"database/sql"
	"fmt"
)

// schema holds the client-side state: the bearer token and the cached
// profile of the signed-in user. Both tables keep a single row.
const schema = `
CREATE TABLE IF NOT EXISTS session (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    server     TEXT NOT NULL,
    token      TEXT NOT NULL,
    expires_at DATETIME,
    saved_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    user_id  INTEGER NOT NULL,
    name     TEXT NOT NULL,
    email    TEXT,
    role     TEXT NOT NULL DEFAULT 'USER'
);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
