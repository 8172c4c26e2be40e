// internal/friends/models.go

package friends

import (
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// EdgeStatus is the lifecycle status of a friend edge
type EdgeStatus string

const (
	StatusPending  EdgeStatus = "pending"
	StatusAccepted EdgeStatus = "accepted"
	StatusDeclined EdgeStatus = "declined"
	StatusBlocked  EdgeStatus = "blocked"
)

// FriendEdge is a directed relationship record. Friendship itself is
// undirected: an accepted edge makes both ends friends.
type FriendEdge struct {
	ID          string     `json:"id" db:"id"`
	RequesterID string     `json:"requester_id" db:"requester_id"`
	ReceiverID  string     `json:"receiver_id" db:"receiver_id"`
	Status      EdgeStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
}

// Active reports whether the edge is pending or accepted
func (e *FriendEdge) Active() bool {
	return e.Status == StatusPending || e.Status == StatusAccepted
}

// Involves reports whether userID is either end of the edge
func (e *FriendEdge) Involves(userID string) bool {
	return e.RequesterID == userID || e.ReceiverID == userID
}

// Other returns the end of the edge that is not userID
func (e *FriendEdge) Other(userID string) string {
	if e.RequesterID == userID {
		return e.ReceiverID
	}
	return e.RequesterID
}

// Friend is a friend listing entry
type Friend struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	University  string    `json:"university,omitempty"`
	Since       time.Time `json:"since"`
}

// MutualFriend is a privacy-filtered mutual friend entry
type MutualFriend struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func mutualFriendFromProfile(p *profile.UserProfile) MutualFriend {
	return MutualFriend{UserID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// SendRequestDTO is the body of POST /friends/requests
type SendRequestDTO struct {
	UserID string `json:"user_id" validate:"required"`
}

// RespondRequestDTO is the body of POST /friends/requests/{id}/respond
type RespondRequestDTO struct {
	Accept *bool `json:"accept" validate:"required"`
}
