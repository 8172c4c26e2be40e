// internal/memstore/store.go
// In-memory storage used by STORE_DRIVER=memory and by tests

package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/matching"
	"github.com/imadgeboyega/campusconnect-backend/internal/messaging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

type state struct {
	profiles      map[string]*profile.UserProfile
	edges         map[string]*friends.FriendEdge
	events        map[string]*events.EventRecord
	engagements   []*events.EngagementRecord
	conversations map[string]*messaging.Conversation
	participants  []*messaging.Participant
	messages      []*messaging.Message
	suggestions   map[string]*matching.MatchSuggestion
	interactions  []*matching.MatchInteraction
}

func newState() *state {
	return &state{
		profiles:      make(map[string]*profile.UserProfile),
		edges:         make(map[string]*friends.FriendEdge),
		events:        make(map[string]*events.EventRecord),
		conversations: make(map[string]*messaging.Conversation),
		suggestions:   make(map[string]*matching.MatchSuggestion),
	}
}

// clone copies every record so a transaction can be discarded. Slices held
// by records are never modified in place and are shared.
func (s *state) clone() *state {
	c := &state{
		profiles:      make(map[string]*profile.UserProfile, len(s.profiles)),
		edges:         make(map[string]*friends.FriendEdge, len(s.edges)),
		events:        make(map[string]*events.EventRecord, len(s.events)),
		engagements:   append([]*events.EngagementRecord(nil), s.engagements...),
		conversations: make(map[string]*messaging.Conversation, len(s.conversations)),
		participants:  append([]*messaging.Participant(nil), s.participants...),
		messages:      append([]*messaging.Message(nil), s.messages...),
		suggestions:   make(map[string]*matching.MatchSuggestion, len(s.suggestions)),
		interactions:  append([]*matching.MatchInteraction(nil), s.interactions...),
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.edges {
		e := *v
		c.edges[k] = &e
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.conversations {
		conv := *v
		c.conversations[k] = &conv
	}
	for k, v := range s.suggestions {
		sg := *v
		c.suggestions[k] = &sg
	}
	return c
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// repo implements every repository interface over one state. Outside a
// transaction it takes the store mutex per call.
type repo struct {
	mu    sync.Locker
	state func() *state
}

// Store is a transactional in-memory store. Transactions are serialized and
// run against a copy of the state that replaces it on success.
type Store struct {
	*repo
	mu sync.Mutex
	st *state
}

// New creates an empty store
func New() *Store {
	s := &Store{st: newState()}
	s.repo = &repo{mu: &s.mu, state: func() *state { return s.st }}
	return s
}

func (s *Store) withTx(ctx context.Context, fn func(*repo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&repo{mu: nopLocker{}, state: func() *state { return work }}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

type friendStore struct{ *Store }

func (f friendStore) WithTx(ctx context.Context, fn func(friends.Repository) error) error {
	return f.withTx(ctx, func(r *repo) error { return fn(r) })
}

// Friends returns the store as a friends.Store
func (s *Store) Friends() friends.Store { return friendStore{s} }

type matchStore struct{ *Store }

func (m matchStore) WithTx(ctx context.Context, fn func(matching.Repository) error) error {
	return m.withTx(ctx, func(r *repo) error { return fn(r) })
}

// Matching returns the store as a matching.Store
func (s *Store) Matching() matching.Store { return matchStore{s} }

// Profiles

func (r *repo) GetProfile(_ context.Context, userID string) (*profile.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.state().profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *repo) GetProfiles(_ context.Context, userIDs []string) (map[string]*profile.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*profile.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.state().profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *repo) ListProfiles(context.Context) ([]*profile.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*profile.UserProfile, 0, len(r.state().profiles))
	for _, p := range r.state().profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Friend edges

func hasStatus(status friends.EdgeStatus, statuses []friends.EdgeStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func sortEdges(edges []*friends.FriendEdge) {
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
}

func (r *repo) EdgesOf(_ context.Context, userID string, statuses ...friends.EdgeStatus) ([]*friends.FriendEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*friends.FriendEdge
	for _, e := range r.state().edges {
		if e.Involves(userID) && hasStatus(e.Status, statuses) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortEdges(out)
	return out, nil
}

func (r *repo) EdgesBetween(_ context.Context, a, b string) ([]*friends.FriendEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*friends.FriendEdge
	for _, e := range r.state().edges {
		if e.Involves(a) && e.Involves(b) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortEdges(out)
	return out, nil
}

func (r *repo) GetEdge(_ context.Context, id string) (*friends.FriendEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.state().edges[id]
	if !ok {
		return nil, friends.ErrEdgeNotFound
	}
	cp := *e
	return &cp, nil
}

// CreateEdge keeps at most one active edge per unordered pair
func (r *repo) CreateEdge(_ context.Context, edge *friends.FriendEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state()
	if _, ok := st.edges[edge.ID]; ok {
		return friends.ErrEdgeExists
	}
	if edge.Active() {
		for _, e := range st.edges {
			if e.Active() && e.Involves(edge.RequesterID) && e.Involves(edge.ReceiverID) {
				return friends.ErrEdgeExists
			}
		}
	}
	cp := *edge
	st.edges[edge.ID] = &cp
	return nil
}

func (r *repo) UpdateEdgeStatus(_ context.Context, id string, status friends.EdgeStatus, respondedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.state().edges[id]
	if !ok {
		return friends.ErrEdgeNotFound
	}
	e.Status = status
	e.RespondedAt = &respondedAt
	return nil
}

func (r *repo) DeleteEdge(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.state().edges[id]; !ok {
		return friends.ErrEdgeNotFound
	}
	delete(r.state().edges, id)
	return nil
}

// Events

func (r *repo) withRSVPCount(e *events.EventRecord) *events.EventRecord {
	cp := *e
	cp.RSVPCount = 0
	for _, en := range r.state().engagements {
		if en.EventID == e.ID && en.IsRSVP() && en.Active() {
			cp.RSVPCount++
		}
	}
	if cp.RSVPCount < e.RSVPCount {
		cp.RSVPCount = e.RSVPCount
	}
	return &cp
}

func (r *repo) ListUpcomingEvents(_ context.Context, from time.Time) ([]*events.EventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.EventRecord
	for _, e := range r.state().events {
		if e.StartDate.After(from) {
			out = append(out, r.withRSVPCount(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *repo) GetEventsByIDs(_ context.Context, ids []string) ([]*events.EventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.EventRecord, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.state().events[id]; ok {
			out = append(out, r.withRSVPCount(e))
		}
	}
	return out, nil
}

func (r *repo) EngagementsOf(_ context.Context, userID string) ([]*events.EngagementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.EngagementRecord
	for _, en := range r.state().engagements {
		if en.UserID == userID {
			cp := *en
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Conversations

func (r *repo) isParticipant(convID, userID string) bool {
	for _, p := range r.state().participants {
		if p.ConversationID == convID && p.UserID == userID {
			return true
		}
	}
	return false
}

func (r *repo) GetDirectConversation(_ context.Context, user1ID, user2ID string) (*messaging.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.state().conversations {
		if c.Type == messaging.ConversationDirect && r.isParticipant(c.ID, user1ID) && r.isParticipant(c.ID, user2ID) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *repo) CreateConversation(_ context.Context, conv *messaging.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *conv
	cp.Participants = nil
	r.state().conversations[conv.ID] = &cp
	return nil
}

func (r *repo) AddParticipant(_ context.Context, participant *messaging.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isParticipant(participant.ConversationID, participant.UserID) {
		cp := *participant
		r.state().participants = append(r.state().participants, &cp)
	}
	return nil
}

func (r *repo) CreateMessage(_ context.Context, message *messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *message
	r.state().messages = append(r.state().messages, &cp)
	return nil
}

func (r *repo) UpdateConversationLastMessage(_ context.Context, convID string, at time.Time, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.state().conversations[convID]; ok {
		c.LastMessageAt = &at
		c.LastMessagePreview = &preview
		c.UpdatedAt = at
	}
	return nil
}

// Suggestions

// LockUser is a no-op: transactions are already serialized
func (r *repo) LockUser(context.Context, string) error { return nil }

func hasSuggestionStatus(status matching.SuggestionStatus, statuses []matching.SuggestionStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CreateSuggestion keeps at most one active suggestion per (to, suggested)
// pair
func (r *repo) CreateSuggestion(_ context.Context, s *matching.MatchSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state()
	for _, existing := range st.suggestions {
		if existing.Active() &&
			existing.SuggestedToUserID == s.SuggestedToUserID &&
			existing.SuggestedUserID == s.SuggestedUserID {
			return matching.ErrDuplicateSuggestion
		}
	}
	cp := *s
	st.suggestions[s.ID] = &cp
	return nil
}

func (r *repo) GetSuggestion(_ context.Context, id string) (*matching.MatchSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.state().suggestions[id]
	if !ok {
		return nil, matching.ErrSuggestionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *repo) UpdateSuggestion(_ context.Context, s *matching.MatchSuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.state().suggestions[s.ID]
	if !ok {
		return matching.ErrSuggestionNotFound
	}
	existing.Status = s.Status
	existing.ViewedAt = s.ViewedAt
	existing.RespondedAt = s.RespondedAt
	existing.RejectReason = s.RejectReason
	return nil
}

func (r *repo) selectSuggestions(keep func(*matching.MatchSuggestion) bool) []*matching.MatchSuggestion {
	var out []*matching.MatchSuggestion
	for _, s := range r.state().suggestions {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func (r *repo) RecentActiveSuggestionsFor(_ context.Context, toUserID string, since time.Time) ([]*matching.MatchSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectSuggestions(func(s *matching.MatchSuggestion) bool {
		return s.SuggestedToUserID == toUserID && s.Active() && !s.CreatedAt.Before(since)
	}), nil
}

func (r *repo) ListSuggestions(_ context.Context, toUserID string, statuses []matching.SuggestionStatus, limit int) ([]*matching.MatchSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.selectSuggestions(func(s *matching.MatchSuggestion) bool {
		return s.SuggestedToUserID == toUserID && hasSuggestionStatus(s.Status, statuses)
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *repo) SuggestionsBetween(_ context.Context, a, b string, statuses ...matching.SuggestionStatus) ([]*matching.MatchSuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.selectSuggestions(func(s *matching.MatchSuggestion) bool {
		pair := (s.SuggestedToUserID == a && s.SuggestedUserID == b) ||
			(s.SuggestedToUserID == b && s.SuggestedUserID == a)
		return pair && hasSuggestionStatus(s.Status, statuses)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *repo) CountSuggestionsByStatus(_ context.Context, toUserID string) (map[matching.SuggestionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[matching.SuggestionStatus]int)
	for _, s := range r.state().suggestions {
		if s.SuggestedToUserID == toUserID {
			counts[s.Status]++
		}
	}
	return counts, nil
}

func (r *repo) ExpireSuggestions(_ context.Context, cutoff time.Time, reason string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.state().suggestions {
		if s.Active() && s.CreatedAt.Before(cutoff) {
			s.Status = matching.StatusRejected
			s.RejectReason = &reason
			s.RespondedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *repo) CreateInteraction(_ context.Context, i *matching.MatchInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.state().interactions = append(r.state().interactions, &cp)
	return nil
}

// Interactions returns the interaction log, optionally filtered by action
func (s *Store) Interactions(actions ...matching.InteractionAction) []matching.MatchInteraction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []matching.MatchInteraction
	for _, i := range s.st.interactions {
		keep := len(actions) == 0
		for _, a := range actions {
			keep = keep || i.Action == a
		}
		if keep {
			out = append(out, *i)
		}
	}
	return out
}

// Conversations returns every conversation with its participants
func (s *Store) Conversations() []messaging.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]messaging.Conversation, 0, len(s.st.conversations))
	for _, c := range s.st.conversations {
		cp := *c
		for _, p := range s.st.participants {
			if p.ConversationID == c.ID {
				pc := *p
				cp.Participants = append(cp.Participants, &pc)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Messages returns the messages of a conversation in creation order
func (s *Store) Messages(convID string) []messaging.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []messaging.Message
	for _, m := range s.st.messages {
		if m.ConversationID == convID {
			out = append(out, *m)
		}
	}
	return out
}

// Suggestions returns every suggestion shown to toUserID, or every
// suggestion when toUserID is empty
func (s *Store) Suggestions(toUserID string) []matching.MatchSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []matching.MatchSuggestion
	for _, sg := range s.st.suggestions {
		if toUserID == "" || sg.SuggestedToUserID == toUserID {
			out = append(out, *sg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuggestedToUserID != out[j].SuggestedToUserID {
			return out[i].SuggestedToUserID < out[j].SuggestedToUserID
		}
		return out[i].SuggestedUserID < out[j].SuggestedUserID
	})
	return out
}
