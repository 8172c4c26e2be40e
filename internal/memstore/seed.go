// internal/memstore/seed.go

package memstore

import (
	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/matching"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// AddProfile inserts or replaces profiles
func (s *Store) AddProfile(profiles ...*profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		cp := *p
		s.st.profiles[p.ID] = &cp
	}
}

// AddEdge inserts edges without the state machine checks
func (s *Store) AddEdge(edges ...*friends.FriendEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range edges {
		cp := *e
		s.st.edges[e.ID] = &cp
	}
}

// AddEvent inserts or replaces events
func (s *Store) AddEvent(evs ...*events.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range evs {
		cp := *e
		s.st.events[e.ID] = &cp
	}
}

// AddEngagement appends RSVPs and favorites
func (s *Store) AddEngagement(records ...*events.EngagementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		cp := *r
		s.st.engagements = append(s.st.engagements, &cp)
	}
}

// AddSuggestion inserts suggestions without the active pair check
func (s *Store) AddSuggestion(suggestions ...*matching.MatchSuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sg := range suggestions {
		cp := *sg
		s.st.suggestions[sg.ID] = &cp
	}
}
