// internal/messaging/repository.go

package messaging

import (
	"context"
	"time"
)

// Repository is the conversation store used when matches start a chat
type Repository interface {
	// GetDirectConversation returns the direct conversation between the two
	// users, or nil when there is none
	GetDirectConversation(ctx context.Context, user1ID, user2ID string) (*Conversation, error)
	CreateConversation(ctx context.Context, conv *Conversation) error
	AddParticipant(ctx context.Context, participant *Participant) error
	CreateMessage(ctx context.Context, message *Message) error
	UpdateConversationLastMessage(ctx context.Context, convID string, at time.Time, preview string) error
}
