package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollsBack(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Friends().WithTx(ctx, func(r friends.Repository) error {
		require.NoError(t, r.CreateEdge(ctx, &friends.FriendEdge{ID: "e1", RequesterID: "a", ReceiverID: "b", Status: friends.StatusPending}))
		edges, err := r.EdgesBetween(ctx, "a", "b")
		require.NoError(t, err)
		assert.Len(t, edges, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	edges, err := s.EdgesBetween(ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestTransactionCommits(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Matching().WithTx(ctx, func(r matching.Repository) error {
		return r.CreateSuggestion(ctx, &matching.MatchSuggestion{ID: "s1", SuggestedToUserID: "a", SuggestedUserID: "b", Status: matching.StatusPending})
	})
	require.NoError(t, err)

	got, err := s.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.SuggestedUserID)
}

func TestActivePairsAreUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateEdge(ctx, &friends.FriendEdge{ID: "e1", RequesterID: "a", ReceiverID: "b", Status: friends.StatusPending}))
	assert.ErrorIs(t, s.CreateEdge(ctx, &friends.FriendEdge{ID: "e2", RequesterID: "b", ReceiverID: "a", Status: friends.StatusPending}), friends.ErrEdgeExists)

	first := &matching.MatchSuggestion{ID: "s1", SuggestedToUserID: "a", SuggestedUserID: "b", Status: matching.StatusPending, CreatedAt: at}
	require.NoError(t, s.CreateSuggestion(ctx, first))
	assert.ErrorIs(t, s.CreateSuggestion(ctx, &matching.MatchSuggestion{ID: "s2", SuggestedToUserID: "a", SuggestedUserID: "b", Status: matching.StatusPending}), matching.ErrDuplicateSuggestion)

	// the reverse direction is a different pair
	require.NoError(t, s.CreateSuggestion(ctx, &matching.MatchSuggestion{ID: "s3", SuggestedToUserID: "b", SuggestedUserID: "a", Status: matching.StatusPending}))

	first.Status = matching.StatusRejected
	require.NoError(t, s.UpdateSuggestion(ctx, first))
	require.NoError(t, s.CreateSuggestion(ctx, &matching.MatchSuggestion{ID: "s4", SuggestedToUserID: "a", SuggestedUserID: "b", Status: matching.StatusPending}))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateSuggestion(ctx, &matching.MatchSuggestion{ID: "s1", SuggestedToUserID: "a", SuggestedUserID: "b", Status: matching.StatusPending}))

	got, err := s.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	got.Status = matching.StatusAccepted

	again, err := s.GetSuggestion(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, matching.StatusPending, again.Status)
}

func TestCancelledTransactionDoesNotRun(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := s.Matching().WithTx(ctx, func(matching.Repository) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
