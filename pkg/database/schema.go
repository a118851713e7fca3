package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema creates the engine's tables. Statements are idempotent.
//
// The exclusion constraint on actors keeps at most one primary landlord per
// policy; it is deferred so a single UPDATE may move the flag between rows.
var Schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS actors (
		id                   UUID PRIMARY KEY,
		policy_id            UUID NOT NULL,
		kind                 TEXT NOT NULL CHECK (kind IN ('landlord', 'tenant', 'guarantor')),
		full_name            TEXT NOT NULL DEFAULT '',
		email                TEXT NOT NULL DEFAULT '',
		phone                TEXT NOT NULL DEFAULT '',
		address_id           UUID,
		is_primary           BOOLEAN NOT NULL DEFAULT FALSE,
		ownership_bps        BIGINT NOT NULL DEFAULT 0 CHECK (ownership_bps BETWEEN 0 AND 10000),
		verification_status  TEXT NOT NULL DEFAULT 'PENDING',
		information_complete BOOLEAN NOT NULL DEFAULT FALSE,
		access_token         TEXT UNIQUE,
		token_expiry         TIMESTAMPTZ,
		last_access_at       TIMESTAMPTZ,
		reviewed_by          UUID,
		reviewed_at          TIMESTAMPTZ,
		review_notes         TEXT,
		details              JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT actors_token_pair CHECK ((access_token IS NULL) = (token_expiry IS NULL)),
		CONSTRAINT actors_primary_landlord_only CHECK (NOT is_primary OR kind = 'landlord')
	)`,
	`DO $$ BEGIN
		ALTER TABLE actors ADD CONSTRAINT actors_one_primary_per_policy
			EXCLUDE USING gist (policy_id WITH =) WHERE (is_primary)
			DEFERRABLE INITIALLY DEFERRED;
	EXCEPTION WHEN duplicate_object OR duplicate_table THEN NULL;
	END $$`,
	`CREATE INDEX IF NOT EXISTS idx_actors_policy_kind ON actors (policy_id, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_actors_token_expiry ON actors (token_expiry) WHERE access_token IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS co_owners (
		id            UUID PRIMARY KEY,
		landlord_id   UUID NOT NULL REFERENCES actors (id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		ownership_bps BIGINT NOT NULL CHECK (ownership_bps BETWEEN 0 AND 10000),
		rfc           TEXT,
		curp          TEXT,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_co_owners_landlord ON co_owners (landlord_id) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS actor_activity_logs (
		id           UUID PRIMARY KEY,
		actor_id     UUID NOT NULL,
		action       TEXT NOT NULL,
		performed_by TEXT NOT NULL DEFAULT '',
		details      JSONB,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_actor_created ON actor_activity_logs (actor_id, created_at DESC)`,
}

// Migrate applies Schema in order.
func Migrate(ctx context.Context, db execer) error {
	for i, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
