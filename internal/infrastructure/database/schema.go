package database

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSchema creates the two collections. Each side keeps its own
// array of foreign ids; there is no join table and no foreign key.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS authors (
    id          UUID PRIMARY KEY,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    birthday    TIMESTAMPTZ NOT NULL,
    book_ids    UUID[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS books (
    id            UUID PRIMARY KEY,
    title         TEXT NOT NULL,
    iban          VARCHAR(34) NOT NULL,
    published_at  TIMESTAMPTZ NOT NULL,
    author_ids    UUID[] NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_authors_book_ids ON authors USING GIN (book_ids);
CREATE INDEX IF NOT EXISTS idx_books_author_ids ON books USING GIN (author_ids);
`

// sqliteSchema stores the id arrays as JSON text and times as RFC3339Nano.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id          TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		birthday    TEXT NOT NULL,
		book_ids    TEXT NOT NULL DEFAULT '[]',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		iban          TEXT NOT NULL,
		published_at  TEXT NOT NULL,
		author_ids    TEXT NOT NULL DEFAULT '[]',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
}

func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
