// internal/matching/repository.go

package matching

import (
	"context"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/messaging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

type (
	profileReader          = profile.Reader
	edgeRepository         = friends.Repository
	engagementReader       = events.EngagementReader
	conversationRepository = messaging.Repository
)

// Repository is everything the lifecycle manager reads and writes. A
// Repository handed to a WithTx callback is bound to that transaction.
type Repository interface {
	profileReader
	edgeRepository
	engagementReader
	conversationRepository

	// LockUser serializes generation for userID until the transaction ends
	LockUser(ctx context.Context, userID string) error

	// CreateSuggestion inserts s. It returns ErrDuplicateSuggestion when an
	// active suggestion for the same pair already exists.
	CreateSuggestion(ctx context.Context, s *MatchSuggestion) error
	GetSuggestion(ctx context.Context, id string) (*MatchSuggestion, error)
	// UpdateSuggestion persists status, timestamps and reject reason
	UpdateSuggestion(ctx context.Context, s *MatchSuggestion) error
	// RecentActiveSuggestionsFor returns pending and viewed suggestions shown
	// to toUserID created at or after since
	RecentActiveSuggestionsFor(ctx context.Context, toUserID string, since time.Time) ([]*MatchSuggestion, error)
	// ListSuggestions returns suggestions shown to toUserID, newest first
	ListSuggestions(ctx context.Context, toUserID string, statuses []SuggestionStatus, limit int) ([]*MatchSuggestion, error)
	// SuggestionsBetween returns suggestions between a and b in either direction
	SuggestionsBetween(ctx context.Context, a, b string, statuses ...SuggestionStatus) ([]*MatchSuggestion, error)
	CountSuggestionsByStatus(ctx context.Context, toUserID string) (map[SuggestionStatus]int, error)
	// ExpireSuggestions rejects active suggestions created before cutoff
	ExpireSuggestions(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error)

	CreateInteraction(ctx context.Context, i *MatchInteraction) error
}

// Store is a Repository that can run a unit of work atomically
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}
