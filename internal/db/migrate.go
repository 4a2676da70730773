package db

import (
	"context"
)

const usersMigration = `
CREATE TABLE IF NOT EXISTS users (
    id bigserial PRIMARY KEY,
    email text NOT NULL,
    name text NOT NULL,
    provider text NOT NULL,
    provider_id text NOT NULL,
    profile_image text NOT NULL DEFAULT '',
    phone_number text NOT NULL DEFAULT '',
    is_active boolean NOT NULL DEFAULT true,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    last_login_at timestamptz,
    CONSTRAINT users_provider_unique
        UNIQUE (provider, provider_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));
`

// RunUsersMigration creates the users table if it does not exist.
func RunUsersMigration(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, usersMigration)
	return err
}
