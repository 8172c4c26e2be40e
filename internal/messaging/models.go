// internal/messaging/models.go

package messaging

import (
	"encoding/json"
	"time"
)

// Conversation types
const (
	ConversationDirect = "direct"
)

// Message types
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Conversation represents a chat conversation
type Conversation struct {
	ID                 string     `json:"id" db:"id"`
	Type               string     `json:"type" db:"type"`
	CreatedBy          *string    `json:"created_by,omitempty" db:"created_by"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	LastMessagePreview *string    `json:"last_message_preview,omitempty" db:"last_message_preview"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`

	Participants []*Participant `json:"participants,omitempty" db:"-"`
}

// Participant represents a conversation participant
type Participant struct {
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Role           string    `json:"role" db:"role"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`
}

// Message is a chat message. System messages have no sender.
type Message struct {
	ID             string          `json:"id" db:"id"`
	ConversationID string          `json:"conversation_id" db:"conversation_id"`
	SenderID       *string         `json:"sender_id,omitempty" db:"sender_id"`
	Content        string          `json:"content" db:"content"`
	MessageType    string          `json:"message_type" db:"message_type"`
	Metadata       json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// WSMessage is the envelope pushed to websocket clients
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// WSMessageType identifies realtime events
type WSMessageType string

const (
	WSTypeMatchSuggestions WSMessageType = "match_suggestions"
	WSTypeMatchAccepted    WSMessageType = "match_accepted"
	WSTypeFriendRequest    WSMessageType = "friend_request"
	WSTypeFriendAccepted   WSMessageType = "friend_accepted"
	WSTypePing             WSMessageType = "ping"
	WSTypePong             WSMessageType = "pong"
)
