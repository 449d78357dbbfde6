package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	username      TEXT NOT NULL DEFAULT '',
	accent_id     INTEGER NOT NULL,
	locale        TEXT NOT NULL DEFAULT '',
	is_me         BOOLEAN NOT NULL DEFAULT FALSE,
	identity_hash BIGINT NOT NULL,
	preview_key   TEXT,
	preview_type  TEXT,
	preview_url   TEXT,
	medium_key    TEXT,
	medium_type   TEXT,
	medium_url    TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS users_identity_hash_idx ON users (identity_hash);
`

// EnsureSchema creates the users table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}
