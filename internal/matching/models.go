// internal/matching/models.go

package matching

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// SuggestionStatus is the lifecycle status of a match suggestion
type SuggestionStatus string

const (
	StatusPending   SuggestionStatus = "pending"
	StatusViewed    SuggestionStatus = "viewed"
	StatusAccepted  SuggestionStatus = "accepted"
	StatusRejected  SuggestionStatus = "rejected"
	StatusConnected SuggestionStatus = "connected"
)

// ActiveStatuses are the statuses a suggestion can still be answered in
var ActiveStatuses = []SuggestionStatus{StatusPending, StatusViewed}

// InteractionAction is the action recorded in the interaction log
type InteractionAction string

const (
	ActionViewed            InteractionAction = "viewed"
	ActionAccepted          InteractionAction = "accepted"
	ActionRejected          InteractionAction = "rejected"
	ActionFriendRequestSent InteractionAction = "friend_request_sent"
	ActionConnected         InteractionAction = "connected"
)

// DefaultFallbackReason labels fallback suggestions that earned no reason
const DefaultFallbackReason = "New student connection"

// ConnectionDetails records what two students have in common
type ConnectionDetails struct {
	SameUniversity    bool     `json:"same_university"`
	SameYear          bool     `json:"same_year"`
	SharedInterests   []string `json:"shared_interests"`
	MutualFriendIDs   []string `json:"mutual_friend_ids"`
	MutualFriendCount int      `json:"mutual_friend_count"`
	CommonEventIDs    []string `json:"common_event_ids"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`
	Fallback          bool     `json:"fallback,omitempty"`
}

// Scan implements the sql.Scanner interface for ConnectionDetails
func (d *ConnectionDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("connection details: unsupported type %T", value)
	}
}

// Value implements the driver.Valuer interface for ConnectionDetails
func (d ConnectionDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// MatchSuggestion is a buddy suggestion shown to SuggestedToUserID
type MatchSuggestion struct {
	ID                string            `json:"id"`
	SuggestedToUserID string            `json:"suggested_to_user_id"`
	SuggestedUserID   string            `json:"suggested_user_id"`
	MatchScore        int               `json:"match_score"`
	Reasons           []string          `json:"reasons"`
	ConnectionDetails ConnectionDetails `json:"connection_details"`
	Status            SuggestionStatus  `json:"status"`
	RejectReason      *string           `json:"reject_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	ViewedAt          *time.Time        `json:"viewed_at,omitempty"`
	RespondedAt       *time.Time        `json:"responded_at,omitempty"`
}

// Active reports whether the suggestion is pending or viewed
func (s *MatchSuggestion) Active() bool {
	return s.Status == StatusPending || s.Status == StatusViewed
}

// MatchInteraction is an append-only audit record
type MatchInteraction struct {
	ID           string                 `json:"id" dynamodbav:"id"`
	FromUserID   string                 `json:"from_user_id" dynamodbav:"from_user_id"`
	ToUserID     string                 `json:"to_user_id" dynamodbav:"to_user_id"`
	Action       InteractionAction      `json:"action" dynamodbav:"action"`
	SuggestionID string                 `json:"suggestion_id" dynamodbav:"suggestion_id"`
	Timestamp    time.Time              `json:"timestamp" dynamodbav:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// UserSummary is the public part of a suggested user's profile
type UserSummary struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	University  string   `json:"university,omitempty"`
	Year        string   `json:"year,omitempty"`
	Interests   []string `json:"interests"`
}

func summaryOf(p *profile.UserProfile) *UserSummary {
	if p == nil {
		return nil
	}
	return &UserSummary{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		University:  p.University,
		Year:        p.Year,
		Interests:   p.Interests,
	}
}

// SuggestionView is a suggestion together with the suggested user
type SuggestionView struct {
	MatchSuggestion
	SuggestedUser *UserSummary `json:"suggested_user,omitempty"`
}

// RespondResult is the outcome of accepting or rejecting a suggestion
type RespondResult struct {
	Suggestion        *MatchSuggestion `json:"suggestion"`
	FriendRequestSent bool             `json:"friend_request_sent"`
	FriendEdgeID      *string          `json:"friend_edge_id,omitempty"`
	ConversationID    *string          `json:"conversation_id,omitempty"`
}

// MatchStats summarizes the suggestions a user has received
type MatchStats struct {
	TotalSuggestions int     `json:"total_suggestions"`
	Pending          int     `json:"pending"`
	Viewed           int     `json:"viewed"`
	Accepted         int     `json:"accepted"`
	Rejected         int     `json:"rejected"`
	Connected        int     `json:"connected"`
	SuccessRate      float64 `json:"success_rate"`
}

// GenerationReport summarizes a scheduled generation run
type GenerationReport struct {
	Users       int `json:"users"`
	Suggestions int `json:"suggestions"`
	Failures    int `json:"failures"`
}
