package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. Constraint names are matched by mapError.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      VARCHAR(150) NOT NULL,
	first_name    VARCHAR(150) NOT NULL DEFAULT '',
	last_name     VARCHAR(150) NOT NULL DEFAULT '',
	email         VARCHAR(254) NOT NULL,
	birth_date    DATE,
	municipality  VARCHAR(100) NOT NULL DEFAULT '',
	locality      VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
);
`

func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply users schema: %w", err)
	}
	return nil
}
