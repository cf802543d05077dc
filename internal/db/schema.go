package db

import (
	"context"
	"fmt"
)

var schemaQueries = []string{
	`
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		position TEXT NOT NULL CHECK (position IN ('ASSOCIATE', 'MANAGER', 'DIRECTOR', 'ADMIN')),
		hire_date DATE NOT NULL,
		sex TEXT NOT NULL CHECK (sex IN ('MALE', 'FEMALE', 'OTHER')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT employees_email_key UNIQUE (email)
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		is_valid BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`,
	`CREATE INDEX IF NOT EXISTS sessions_employee_id_idx ON sessions(employee_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions(expires_at)`,
	`
	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token_hash TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`,
	`CREATE INDEX IF NOT EXISTS refresh_tokens_employee_id_idx ON refresh_tokens(employee_id)`,
	`CREATE INDEX IF NOT EXISTS refresh_tokens_expires_at_idx ON refresh_tokens(expires_at)`,
	`
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		house_id TEXT,
		date_of_birth DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`,
	`
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('WORK', 'MEDICAL', 'SOCIAL', 'OTHER')),
		description TEXT NOT NULL DEFAULT '',
		begin_date DATE NOT NULL,
		end_date DATE NOT NULL,
		begin_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		number_staff_required INTEGER NOT NULL DEFAULT 0 CHECK (number_staff_required >= 0),
		medical JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date >= begin_date)
	)
	`,
	`CREATE INDEX IF NOT EXISTS events_client_schedule_idx ON events(client_id, begin_date, begin_time)`,
}

// EnsureSchema creates every table the service needs when missing.
func (db *Postgres) EnsureSchema(ctx context.Context) error {
	for _, query := range schemaQueries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
