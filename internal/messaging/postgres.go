// internal/messaging/postgres.go

package messaging

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db sqlx.ExtContext
}

// NewPostgresRepository creates a repository bound to db, which may be a
// *sqlx.DB or a *sqlx.Tx
func NewPostgresRepository(db sqlx.ExtContext) Repository {
	return &postgresRepository{db: db}
}

// GetDirectConversation finds the active direct conversation between two users
func (r *postgresRepository) GetDirectConversation(ctx context.Context, user1ID, user2ID string) (*Conversation, error) {
	query := `
		SELECT c.id, c.type, c.created_by, c.is_active, c.last_message_at,
		       c.last_message_preview, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants p1 ON p1.conversation_id = c.id AND p1.user_id = $1
		JOIN conversation_participants p2 ON p2.conversation_id = c.id AND p2.user_id = $2
		WHERE c.type = 'direct' AND c.is_active = true
		LIMIT 1`

	var conv Conversation
	err := sqlx.GetContext(ctx, r.db, &conv, query, user1ID, user2ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get direct conversation: %w", err)
	}
	return &conv, nil
}

// CreateConversation creates a new conversation
func (r *postgresRepository) CreateConversation(ctx context.Context, conv *Conversation) error {
	query := `
		INSERT INTO conversations (id, type, created_by, is_active, created_at, updated_at)
		VALUES (:id, :type, :created_by, :is_active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, conv); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// AddParticipant adds a user to a conversation
func (r *postgresRepository) AddParticipant(ctx context.Context, participant *Participant) error {
	query := `
		INSERT INTO conversation_participants (conversation_id, user_id, role, joined_at)
		VALUES (:conversation_id, :user_id, :role, :joined_at)
		ON CONFLICT (conversation_id, user_id) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, participant); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// CreateMessage creates a new message
func (r *postgresRepository) CreateMessage(ctx context.Context, message *Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, message_type, metadata, created_at)
		VALUES (:id, :conversation_id, :sender_id, :content, :message_type, :metadata, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// UpdateConversationLastMessage updates the last message of a conversation
func (r *postgresRepository) UpdateConversationLastMessage(ctx context.Context, convID string, at time.Time, preview string) error {
	query := `
		UPDATE conversations
		SET last_message_at = $1,
		    last_message_preview = $2,
		    updated_at = $1
		WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, at, preview, convID); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}
