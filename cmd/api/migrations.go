// cmd/api/migrations.go
// Idempotent schema setup for the postgres store

package main

import (
	"context"
	"fmt"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/database"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	// Users carry the profile fields read by both scorers
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name VARCHAR(100) NOT NULL,
		avatar_url TEXT,
		interests TEXT[] NOT NULL DEFAULT '{}',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		preferences JSONB NOT NULL DEFAULT '{}',
		university VARCHAR(255),
		year VARCHAR(20),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Events
	`CREATE TABLE IF NOT EXISTS organizers (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		categories TEXT[] NOT NULL DEFAULT '{}',
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		location_name VARCHAR(255),
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		is_virtual BOOLEAN NOT NULL DEFAULT FALSE,
		organizer_id TEXT REFERENCES organizers(id) ON DELETE SET NULL,
		is_free BOOLEAN NOT NULL DEFAULT TRUE,
		price_amount NUMERIC(10, 2),
		price_currency VARCHAR(3),
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date) WHERE is_cancelled = FALSE`,

	`CREATE TABLE IF NOT EXISTS event_rsvps (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL CHECK (status IN ('going', 'interested', 'not_going')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, event_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_event_rsvps_event ON event_rsvps(event_id, status)`,

	`CREATE TABLE IF NOT EXISTS event_favorites (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, event_id)
	)`,

	// Friend graph: one pending or accepted edge per unordered pair
	`CREATE TABLE IF NOT EXISTS friend_edges (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'accepted', 'declined', 'blocked')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		responded_at TIMESTAMPTZ,
		CHECK (requester_id <> receiver_id)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS friend_edges_active_pair
		ON friend_edges (LEAST(requester_id, receiver_id), GREATEST(requester_id, receiver_id))
		WHERE status IN ('pending', 'accepted')`,

	`CREATE INDEX IF NOT EXISTS idx_friend_edges_requester ON friend_edges(requester_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_edges_receiver ON friend_edges(receiver_id, status)`,

	// Conversations opened by accepted matches
	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		type VARCHAR(20) NOT NULL DEFAULT 'direct',
		created_by TEXT REFERENCES users(id) ON DELETE SET NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_message_at TIMESTAMPTZ,
		last_message_preview TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS conversation_participants (
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (conversation_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		content TEXT NOT NULL,
		message_type VARCHAR(20) NOT NULL DEFAULT 'text',
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at DESC)`,

	// Buddy matching
	`CREATE TABLE IF NOT EXISTS match_suggestions (
		id TEXT PRIMARY KEY,
		suggested_to_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		suggested_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		match_score INTEGER NOT NULL CHECK (match_score BETWEEN 0 AND 100),
		reasons TEXT[] NOT NULL DEFAULT '{}',
		connection_details JSONB NOT NULL DEFAULT '{}',
		status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'viewed', 'accepted', 'rejected', 'connected')),
		reject_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		viewed_at TIMESTAMPTZ,
		responded_at TIMESTAMPTZ,
		CHECK (suggested_to_user_id <> suggested_user_id)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS match_suggestions_active_pair
		ON match_suggestions (suggested_to_user_id, suggested_user_id)
		WHERE status IN ('pending', 'viewed')`,

	`CREATE INDEX IF NOT EXISTS idx_match_suggestions_target ON match_suggestions(suggested_to_user_id, status, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS match_interactions (
		id TEXT PRIMARY KEY,
		from_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		to_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		action VARCHAR(30) NOT NULL,
		suggestion_id TEXT REFERENCES match_suggestions(id) ON DELETE SET NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_match_interactions_suggestion ON match_interactions(suggestion_id)`,
}

// runMigrations applies every statement in one transaction
func runMigrations(ctx context.Context, db *sqlx.DB) error {
	log := logging.Component("migrations")

	err := database.RunInTx(ctx, db, nil, func(tx *sqlx.Tx) error {
		for i, stmt := range migrations {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("statements", len(migrations)).Msg("database migrations completed")
	return nil
}
