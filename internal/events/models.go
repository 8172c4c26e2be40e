// internal/events/models.go

package events

import (
	"strings"
	"time"
)

// EventLocation is where an event takes place
type EventLocation struct {
	Name      string  `json:"name,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	IsVirtual bool    `json:"is_virtual"`
}

// Organizer identifies who hosts an event
type Organizer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// Price describes the cost of attending
type Price struct {
	IsFree   bool    `json:"is_free"`
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// EventRecord is an event as seen by the recommendation scorer
type EventRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Categories  []string       `json:"categories"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Location    *EventLocation `json:"location,omitempty"`
	Organizer   Organizer      `json:"organizer"`
	Price       Price          `json:"price"`
	RSVPCount   int            `json:"rsvp_count"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EngagementKind distinguishes RSVPs from favorites
type EngagementKind string

const (
	KindRSVP     EngagementKind = "rsvp"
	KindFavorite EngagementKind = "favorite"
)

// RSVP statuses
const (
	RSVPGoing      = "going"
	RSVPInterested = "interested"
	RSVPNotGoing   = "not_going"
)

// EngagementRecord links a user to an event they RSVP'd to or favorited
type EngagementRecord struct {
	UserID    string         `json:"user_id" db:"user_id"`
	EventID   string         `json:"event_id" db:"event_id"`
	Kind      EngagementKind `json:"kind" db:"kind"`
	Status    string         `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Active reports whether the record is a behavioral signal. Favorites are
// always active; RSVPs are active when going or interested.
func (e *EngagementRecord) Active() bool {
	if e.Kind == KindFavorite {
		return true
	}
	return e.Status == RSVPGoing || e.Status == RSVPInterested
}

// IsRSVP reports whether the record is an active RSVP
func (e *EngagementRecord) IsRSVP() bool {
	return e.Kind == KindRSVP && e.Active()
}

// GoingEventIDs returns the ids of events the records mark as going
func GoingEventIDs(records []*EngagementRecord) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, r := range records {
		if r.Kind == KindRSVP && r.Status == RSVPGoing {
			ids[r.EventID] = struct{}{}
		}
	}
	return ids
}

// ScoredEvent is an event with its recommendation score and explanation
type ScoredEvent struct {
	EventRecord
	RecommendationScore float64  `json:"recommendation_score"`
	MatchedInterests    []string `json:"matched_interests"`
	ReasonsToAttend     []string `json:"reasons_to_attend"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
