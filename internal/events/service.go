// internal/events/service.go

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/rs/zerolog"
)

// Pagination defaults for recommendations
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Service builds event recommendations
type Service struct {
	events    Repository
	profiles  profile.Reader
	scorer    *Scorer
	explainer Explainer
	health    *HealthTracker
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithExplainer enables external explanations guarded by health
func WithExplainer(explainer Explainer, health *HealthTracker) Option {
	return func(s *Service) {
		s.explainer = explainer
		s.health = health
	}
}

// WithClock overrides the clock used to select upcoming events
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a recommendation service
func NewService(events Repository, profiles profile.Reader, scorer *Scorer, opts ...Option) *Service {
	s := &Service{
		events:   events,
		profiles: profiles,
		scorer:   scorer,
		now:      time.Now,
		log:      logging.Component("events"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetEventRecommendations ranks every upcoming event the user has not
// engaged with yet and returns the page [offset, offset+limit). Read-only.
func (s *Service) GetEventRecommendations(ctx context.Context, userID string, limit, offset int) ([]ScoredEvent, error) {
	started := time.Now()
	defer func() { recommendationDuration.Observe(time.Since(started).Seconds()) }()

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.events.EngagementsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load engagement history: %w", err)
	}

	engagedIDs := make(map[string]struct{})
	ids := make([]string, 0, len(records))
	rsvps := make([]*EngagementRecord, 0, len(records))
	for _, r := range records {
		if !r.Active() {
			continue
		}
		if r.IsRSVP() {
			rsvps = append(rsvps, r)
		}
		if _, seen := engagedIDs[r.EventID]; !seen {
			engagedIDs[r.EventID] = struct{}{}
			ids = append(ids, r.EventID)
		}
	}

	engaged, err := s.events.GetEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load engaged events: %w", err)
	}

	upcoming, err := s.events.ListUpcomingEvents(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming events: %w", err)
	}
	pool := make([]*EventRecord, 0, len(upcoming))
	for _, e := range upcoming {
		if _, done := engagedIDs[e.ID]; !done {
			pool = append(pool, e)
		}
	}

	ranked := s.scorer.Rank(user, pool, engaged, rsvps)
	if offset >= len(ranked) {
		return []ScoredEvent{}, nil
	}
	end := offset + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	page := ranked[offset:end]

	for i := range page {
		event := &page[i].EventRecord
		page[i].ReasonsToAttend = s.explain(ctx, user, event, s.scorer.Explain(user, event, engaged, rsvps))
		recommendationScores.Observe(page[i].RecommendationScore)
	}

	s.log.Debug().
		Str("user_id", userID).
		Int("pool", len(pool)).
		Int("returned", len(page)).
		Msg("event recommendations built")
	return page, nil
}
