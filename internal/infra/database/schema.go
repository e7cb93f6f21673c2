package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS drafts (
		id          UUID PRIMARY KEY,
		draft_key   TEXT NOT NULL,
		form_type   TEXT NOT NULL CHECK (form_type IN ('lead', 'contact', 'quiz')),
		data        JSONB NOT NULL,
		session_id  TEXT NOT NULL,
		ip_address  TEXT,
		user_agent  TEXT,
		location    JSONB,
		progress    INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (draft_key, form_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_expires_at ON drafts (expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts (updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL,
		phone       TEXT,
		company     TEXT,
		service     TEXT NOT NULL,
		message     TEXT,
		status      TEXT NOT NULL DEFAULT 'new',
		source      TEXT NOT NULL DEFAULT 'website',
		ip_address  TEXT,
		user_agent  TEXT,
		location    JSONB,
		session_id  TEXT,
		progress    INTEGER NOT NULL DEFAULT 100,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads (email)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
