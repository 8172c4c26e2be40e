// internal/friends/service.go

package friends

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/rs/zerolog"
)

// AcceptHook runs after a friend request between requesterID and receiverID
// has been accepted and committed
type AcceptHook func(ctx context.Context, requesterID, receiverID string) error

// Notifier pushes realtime events to a connected user
type Notifier interface {
	NotifyUser(userID, eventType string, data interface{})
}

// Realtime event types
const (
	EventFriendRequest  = "friend_request"
	EventFriendAccepted = "friend_accepted"
)

// Service runs the friend edge state machine:
// none -> pending -> accepted | declined | blocked.
type Service struct {
	store    Store
	profiles profile.Reader
	notifier Notifier
	hooks    []AcceptHook
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier sets the realtime notifier
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a friend service
func NewService(store Store, profiles profile.Reader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		profiles: profiles,
		now:      time.Now,
		log:      logging.Component("friends"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnAccept registers a hook run after a request is accepted
func (s *Service) OnAccept(hook AcceptHook) {
	s.hooks = append(s.hooks, hook)
}

// Graph returns a graph accessor over the service's store
func (s *Service) Graph() *Graph {
	return NewGraph(s.store, s.profiles)
}

// SendRequest creates a pending edge from fromID to toID
func (s *Service) SendRequest(ctx context.Context, fromID, toID string) (*FriendEdge, error) {
	if fromID == toID {
		return nil, ErrSelfRequest
	}
	if _, err := s.profiles.GetProfile(ctx, toID); err != nil {
		return nil, err
	}

	edge := &FriendEdge{
		ID:          uuid.New().String(),
		RequesterID: fromID,
		ReceiverID:  toID,
		Status:      StatusPending,
		CreatedAt:   s.now().UTC(),
	}

	err := s.store.WithTx(ctx, func(repo Repository) error {
		return CreatePendingEdge(ctx, repo, edge)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("edge_id", edge.ID).Str("from", fromID).Str("to", toID).Msg("friend request sent")
	s.notify(toID, EventFriendRequest, map[string]string{"edge_id": edge.ID, "from_user_id": fromID})
	return edge, nil
}

// CreatePendingEdge inserts edge after checking that no block, active edge or
// undeleted declined edge exists between its ends. It must run inside a
// transaction.
func CreatePendingEdge(ctx context.Context, repo Repository, edge *FriendEdge) error {
	existing, err := repo.EdgesBetween(ctx, edge.RequesterID, edge.ReceiverID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		switch {
		case e.Status == StatusBlocked:
			return ErrBlocked
		case e.Active():
			return ErrEdgeExists
		case e.Status == StatusDeclined:
			return ErrDeclinedExists
		}
	}
	return repo.CreateEdge(ctx, edge)
}

// Respond accepts or declines a pending request. Only the receiver may respond.
func (s *Service) Respond(ctx context.Context, edgeID, callerID string, accept bool) (*FriendEdge, error) {
	var edge *FriendEdge
	err := s.store.WithTx(ctx, func(repo Repository) error {
		var err error
		edge, err = repo.GetEdge(ctx, edgeID)
		if err != nil {
			return err
		}
		if edge.ReceiverID != callerID {
			if edge.RequesterID == callerID {
				return ErrNotReceiver
			}
			return ErrNotParticipant
		}
		if edge.Status != StatusPending {
			return ErrNotPending
		}

		now := s.now().UTC()
		edge.Status = StatusDeclined
		if accept {
			edge.Status = StatusAccepted
		}
		edge.RespondedAt = &now
		return repo.UpdateEdgeStatus(ctx, edge.ID, edge.Status, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("edge_id", edge.ID).Str("status", string(edge.Status)).Msg("friend request answered")

	if edge.Status == StatusAccepted {
		s.notify(edge.RequesterID, EventFriendAccepted, map[string]string{"edge_id": edge.ID, "user_id": edge.ReceiverID})
		for _, hook := range s.hooks {
			if err := hook(ctx, edge.RequesterID, edge.ReceiverID); err != nil {
				s.log.Warn().Err(err).Str("edge_id", edge.ID).Msg("friend accept hook failed")
			}
		}
	}
	return edge, nil
}

// Block replaces any edge between callerID and targetID with a blocked edge
// owned by callerID
func (s *Service) Block(ctx context.Context, callerID, targetID string) (*FriendEdge, error) {
	if callerID == targetID {
		return nil, ErrSelfBlock
	}
	if _, err := s.profiles.GetProfile(ctx, targetID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	edge := &FriendEdge{
		ID:          uuid.New().String(),
		RequesterID: callerID,
		ReceiverID:  targetID,
		Status:      StatusBlocked,
		CreatedAt:   now,
		RespondedAt: &now,
	}

	err := s.store.WithTx(ctx, func(repo Repository) error {
		existing, err := repo.EdgesBetween(ctx, callerID, targetID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.Status == StatusBlocked && e.RequesterID == callerID {
				edge = e
				return nil
			}
		}
		for _, e := range existing {
			if err := repo.DeleteEdge(ctx, e.ID); err != nil {
				return err
			}
		}
		return repo.CreateEdge(ctx, edge)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", callerID).Str("blocked_user_id", targetID).Msg("user blocked")
	return edge, nil
}

// DeleteDeclined removes a declined edge so either party may request again
func (s *Service) DeleteDeclined(ctx context.Context, edgeID, callerID string) error {
	return s.store.WithTx(ctx, func(repo Repository) error {
		edge, err := repo.GetEdge(ctx, edgeID)
		if err != nil {
			return err
		}
		if !edge.Involves(callerID) {
			return ErrNotParticipant
		}
		if edge.Status != StatusDeclined {
			return ErrNotDeclined
		}
		return repo.DeleteEdge(ctx, edgeID)
	})
}

// ListFriends returns the caller's accepted friends ordered by display name
func (s *Service) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	edges, err := s.store.EdgesOf(ctx, userID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	since := make(map[string]time.Time, len(edges))
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		other := e.Other(userID)
		if _, seen := since[other]; seen {
			continue
		}
		at := e.CreatedAt
		if e.RespondedAt != nil {
			at = *e.RespondedAt
		}
		since[other] = at
		ids = append(ids, other)
	}

	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profiles: %w", err)
	}

	out := make([]Friend, 0, len(ids))
	for _, id := range ids {
		p, ok := profiles[id]
		if !ok {
			continue
		}
		out = append(out, Friend{
			UserID:      id,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			University:  p.University,
			Since:       since[id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// MutualFriends returns the visible friends the caller shares with otherID
func (s *Service) MutualFriends(ctx context.Context, callerID, otherID string) ([]MutualFriend, error) {
	if _, err := s.profiles.GetProfile(ctx, otherID); err != nil {
		return nil, err
	}
	blocked, err := s.Graph().IsBlocked(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	ids, err := s.Graph().MutualFriends(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load mutual friend profiles: %w", err)
	}

	out := make([]MutualFriend, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, mutualFriendFromProfile(p))
		}
	}
	return out, nil
}

func (s *Service) notify(userID, eventType string, data interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, eventType, data)
}
