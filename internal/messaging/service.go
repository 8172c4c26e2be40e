// internal/messaging/service.go

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const previewLength = 100

// Starter opens direct conversations. It works on whatever Repository it is
// handed so callers can run it inside their own transaction.
type Starter struct {
	now func() time.Time
}

// NewStarter creates a conversation starter. A nil clock means time.Now.
func NewStarter(now func() time.Time) *Starter {
	if now == nil {
		now = time.Now
	}
	return &Starter{now: now}
}

// GetOrCreateDirectConversation returns the direct conversation between the
// two users, creating it when missing. created reports whether it was new.
func (s *Starter) GetOrCreateDirectConversation(ctx context.Context, repo Repository, initiatorID, otherID string) (conv *Conversation, created bool, err error) {
	conv, err = repo.GetDirectConversation(ctx, initiatorID, otherID)
	if err != nil {
		return nil, false, err
	}
	if conv != nil {
		return conv, false, nil
	}

	now := s.now().UTC()
	conv = &Conversation{
		ID:        uuid.New().String(),
		Type:      ConversationDirect,
		CreatedBy: &initiatorID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateConversation(ctx, conv); err != nil {
		return nil, false, err
	}

	for _, userID := range []string{initiatorID, otherID} {
		p := &Participant{ConversationID: conv.ID, UserID: userID, Role: "member", JoinedAt: now}
		if err := repo.AddParticipant(ctx, p); err != nil {
			return nil, false, err
		}
		conv.Participants = append(conv.Participants, p)
	}
	return conv, true, nil
}

// StartWithSystemMessage opens (or reuses) the direct conversation between
// the users and posts a system message to it
func (s *Starter) StartWithSystemMessage(ctx context.Context, repo Repository, initiatorID, otherID, content string, metadata interface{}) (*Conversation, *Message, error) {
	conv, _, err := s.GetOrCreateDirectConversation(ctx, repo, initiatorID, otherID)
	if err != nil {
		return nil, nil, err
	}

	var raw json.RawMessage
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode message metadata: %w", err)
		}
		raw = b
	}

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Content:        content,
		MessageType:    MessageTypeSystem,
		Metadata:       raw,
		CreatedAt:      s.now().UTC(),
	}
	if err := repo.CreateMessage(ctx, msg); err != nil {
		return nil, nil, err
	}

	preview := content
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	if err := repo.UpdateConversationLastMessage(ctx, conv.ID, msg.CreatedAt, preview); err != nil {
		return nil, nil, err
	}
	return conv, msg, nil
}
