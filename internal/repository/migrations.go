package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/pkg/logger"
)

type migration struct {
	name  string
	query string
}

// Every statement is idempotent so the list can run on each start.
var migrations = []migration{
	{"create users", `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			username      VARCHAR(50)  NOT NULL UNIQUE,
			email         VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT         NOT NULL,
			first_name    VARCHAR(100) NOT NULL DEFAULT '',
			last_name     VARCHAR(100) NOT NULL DEFAULT '',
			phone         VARCHAR(20),
			role          VARCHAR(20)  NOT NULL CHECK (role IN ('student', 'teacher', 'organizer')),
			is_admin      BOOLEAN      NOT NULL DEFAULT FALSE,
			is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
			last_login_at TIMESTAMPTZ,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`},
	{"create user_sessions", `
		CREATE TABLE IF NOT EXISTS user_sessions (
			id                 UUID PRIMARY KEY,
			user_id            UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			refresh_token_hash TEXT        NOT NULL UNIQUE,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at         TIMESTAMPTZ NOT NULL,
			revoked_at         TIMESTAMPTZ,
			revoked_reason     TEXT
		)`},
	{"create events", `
		CREATE TABLE IF NOT EXISTS events (
			id           UUID PRIMARY KEY,
			title        VARCHAR(255) NOT NULL,
			event_type   VARCHAR(20)  NOT NULL CHECK (event_type IN ('workshop', 'lecture', 'seminar')),
			start_date   DATE         NOT NULL,
			end_date     DATE         NOT NULL,
			start_time   TIME         NOT NULL,
			end_time     TIME         NOT NULL,
			location     VARCHAR(255) NOT NULL,
			capacity     INTEGER      NOT NULL CHECK (capacity > 0),
			description  TEXT         NOT NULL DEFAULT '',
			organizer_id UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			CHECK (end_date >= start_date)
		)`},
	{"add events seat_version", `ALTER TABLE events ADD COLUMN IF NOT EXISTS seat_version BIGINT NOT NULL DEFAULT 0`},
	{"index events start_date", `CREATE INDEX IF NOT EXISTS idx_events_start_date ON events (start_date)`},
	{"create registrations", `
		CREATE TABLE IF NOT EXISTS registrations (
			id            UUID PRIMARY KEY,
			user_id       UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id      UUID        NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT registrations_user_event_key UNIQUE (user_id, event_id)
		)`},
	{"index registrations event", `CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id)`},
	{"create certificates", `
		CREATE TABLE IF NOT EXISTS certificates (
			id        UUID PRIMARY KEY,
			user_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id  UUID        NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT certificates_user_event_key UNIQUE (user_id, event_id)
		)`},
	{"create audit_log", `
		CREATE TABLE IF NOT EXISTS audit_log (
			id            BIGSERIAL PRIMARY KEY,
			actor_user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			action        VARCHAR(10) NOT NULL CHECK (action IN ('CREATE', 'UPDATE', 'DELETE', 'READ')),
			entity_type   VARCHAR(50) NOT NULL,
			entity_id     VARCHAR(64) NOT NULL,
			description   TEXT        NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"index audit_log entity", `CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log (entity_type, created_at DESC)`},
}

func RunMigrations(ctx context.Context, db *pgxpool.Pool, log logger.Logger) error {
	log.Info("Running database migrations", "count", len(migrations))

	for _, m := range migrations {
		if _, err := db.Exec(ctx, m.query); err != nil {
			log.Error("Migration failed", "migration", m.name, "error", err)
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		log.Debug("Migration applied", "migration", m.name)
	}

	log.Info("Database migrations completed")
	return nil
}
