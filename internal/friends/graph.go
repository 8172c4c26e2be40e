// internal/friends/graph.go

package friends

import (
	"context"
	"fmt"
	"sort"

	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// Graph resolves friendship over directed edge storage. Callers never see
// edge direction: FriendIDsOf(a) contains b iff FriendIDsOf(b) contains a.
type Graph struct {
	edges    EdgeReader
	profiles profile.Reader
}

// NewGraph creates a graph accessor over the given readers. Both may be
// transaction-bound.
func NewGraph(edges EdgeReader, profiles profile.Reader) *Graph {
	return &Graph{edges: edges, profiles: profiles}
}

// NeighborIDs returns the other ends of userID's edges with the given statuses
func (g *Graph) NeighborIDs(ctx context.Context, userID string, statuses ...EdgeStatus) (map[string]struct{}, error) {
	edges, err := g.edges.EdgesOf(ctx, userID, statuses...)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		ids[e.Other(userID)] = struct{}{}
	}
	return ids, nil
}

// FriendIDsOf returns the ids of userID's accepted friends
func (g *Graph) FriendIDsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	return g.NeighborIDs(ctx, userID, StatusAccepted)
}

// MutualFriends returns the sorted ids of users who are friends with both a
// and b and whose profile is visible
func (g *Graph) MutualFriends(ctx context.Context, a, b string) ([]string, error) {
	friendsA, err := g.FriendIDsOf(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends of %s: %w", a, err)
	}
	if len(friendsA) == 0 {
		return []string{}, nil
	}
	friendsB, err := g.FriendIDsOf(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends of %s: %w", b, err)
	}

	shared := make([]string, 0)
	for id := range friendsA {
		if _, ok := friendsB[id]; ok {
			shared = append(shared, id)
		}
	}
	if len(shared) == 0 {
		return shared, nil
	}

	profiles, err := g.profiles.GetProfiles(ctx, shared)
	if err != nil {
		return nil, fmt.Errorf("failed to load mutual friend profiles: %w", err)
	}

	visible := shared[:0]
	for _, id := range shared {
		if p, ok := profiles[id]; ok && p.ProfileVisible() {
			visible = append(visible, id)
		}
	}
	sort.Strings(visible)
	return visible, nil
}

// ActiveEdgeBetween returns the pending or accepted edge between a and b, or
// nil when there is none
func (g *Graph) ActiveEdgeBetween(ctx context.Context, a, b string) (*FriendEdge, error) {
	edges, err := g.edges.EdgesBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.Active() {
			return e, nil
		}
	}
	return nil, nil
}

// IsBlocked reports whether either user has blocked the other
func (g *Graph) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	edges, err := g.edges.EdgesBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	for _, e := range edges {
		if e.Status == StatusBlocked {
			return true, nil
		}
	}
	return false, nil
}
