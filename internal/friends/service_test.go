package friends_test

import (
	"context"
	"testing"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/memstore"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, ids ...string) (*friends.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	for _, id := range ids {
		store.AddProfile(&profile.UserProfile{ID: id, DisplayName: id})
	}
	svc := friends.NewService(store.Friends(), store,
		friends.WithClock(func() time.Time { return now }),
		friends.WithLogger(logging.Nop()))
	return svc, store
}

func befriend(t *testing.T, svc *friends.Service, a, b string) {
	t.Helper()
	edge, err := svc.SendRequest(context.Background(), a, b)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), edge.ID, b, true)
	require.NoError(t, err)
}

func TestFriendshipIsUndirected(t *testing.T) {
	svc, _ := newService(t, "a", "b", "c")
	befriend(t, svc, "a", "b")
	befriend(t, svc, "c", "a")

	ids, err := svc.Graph().FriendIDsOf(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"b": {}, "c": {}}, ids)

	list, err := svc.ListFriends(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].UserID)
	assert.Equal(t, "c", list[1].UserID)
	assert.Equal(t, now, list[0].Since)
}

func TestMutualFriendsIsCommutative(t *testing.T) {
	svc, store := newService(t, "a", "b", "m1", "m2", "m3", "only-a")
	befriend(t, svc, "a", "m1")
	befriend(t, svc, "m1", "b")
	befriend(t, svc, "a", "m2")
	befriend(t, svc, "b", "m2")
	befriend(t, svc, "m3", "a")
	befriend(t, svc, "m3", "b")
	befriend(t, svc, "a", "only-a")

	private := &profile.UserProfile{ID: "m3", DisplayName: "m3"}
	private.Preferences.Privacy.ProfileVisibility = profile.VisibilityPrivate
	store.AddProfile(private)

	graph := svc.Graph()
	ab, err := graph.MutualFriends(context.Background(), "a", "b")
	require.NoError(t, err)
	ba, err := graph.MutualFriends(context.Background(), "b", "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, ab)
	assert.Equal(t, ab, ba)

	listed, err := svc.MutualFriends(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestMutualFriendsPendingDoesNotCount(t *testing.T) {
	svc, _ := newService(t, "a", "b", "m")
	befriend(t, svc, "a", "m")
	_, err := svc.SendRequest(context.Background(), "b", "m")
	require.NoError(t, err)

	got, err := svc.Graph().MutualFriends(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSendRequestRules(t *testing.T) {
	svc, _ := newService(t, "a", "b")
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "a", "a")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = svc.SendRequest(ctx, "a", "ghost")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = svc.SendRequest(ctx, "a", "b")
	require.NoError(t, err)

	// an active edge in either direction blocks a second request
	_, err = svc.SendRequest(ctx, "a", "b")
	assert.ErrorIs(t, err, friends.ErrEdgeExists)
	_, err = svc.SendRequest(ctx, "b", "a")
	assert.ErrorIs(t, err, friends.ErrEdgeExists)
}

func TestRespondOnlyByReceiver(t *testing.T) {
	svc, _ := newService(t, "a", "b", "c")
	ctx := context.Background()
	edge, err := svc.SendRequest(ctx, "a", "b")
	require.NoError(t, err)

	_, err = svc.Respond(ctx, edge.ID, "a", true)
	assert.ErrorIs(t, err, friends.ErrNotReceiver)
	_, err = svc.Respond(ctx, edge.ID, "c", true)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = svc.Respond(ctx, "missing", "b", true)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	answered, err := svc.Respond(ctx, edge.ID, "b", false)
	require.NoError(t, err)
	assert.Equal(t, friends.StatusDeclined, answered.Status)

	_, err = svc.Respond(ctx, edge.ID, "b", true)
	assert.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestRetryAfterDecline(t *testing.T) {
	svc, _ := newService(t, "a", "b")
	ctx := context.Background()
	edge, err := svc.SendRequest(ctx, "a", "b")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, edge.ID, "b", false)
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, "a", "b")
	assert.ErrorIs(t, err, friends.ErrDeclinedExists)

	require.NoError(t, svc.DeleteDeclined(ctx, edge.ID, "a"))
	assert.ErrorIs(t, svc.DeleteDeclined(ctx, edge.ID, "a"), utils.ErrNotFound)

	again, err := svc.SendRequest(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, friends.StatusPending, again.Status)

	assert.ErrorIs(t, svc.DeleteDeclined(ctx, again.ID, "a"), friends.ErrNotDeclined)
}

func TestBlockSuppressesBothDirections(t *testing.T) {
	svc, store := newService(t, "a", "b")
	ctx := context.Background()
	befriend(t, svc, "a", "b")

	blocked, err := svc.Block(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, friends.StatusBlocked, blocked.Status)

	again, err := svc.Block(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, blocked.ID, again.ID)

	edges, err := store.EdgesBetween(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, edges, 1)

	_, err = svc.SendRequest(ctx, "a", "b")
	assert.ErrorIs(t, err, friends.ErrBlocked)
	_, err = svc.SendRequest(ctx, "b", "a")
	assert.ErrorIs(t, err, friends.ErrBlocked)

	_, err = svc.MutualFriends(ctx, "a", "b")
	assert.ErrorIs(t, err, utils.ErrForbidden)

	list, err := svc.ListFriends(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Block(ctx, "a", "a")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

type hookCall struct{ requester, receiver string }

func TestAcceptRunsHooks(t *testing.T) {
	svc, _ := newService(t, "a", "b")
	var calls []hookCall
	svc.OnAccept(func(_ context.Context, requester, receiver string) error {
		calls = append(calls, hookCall{requester, receiver})
		return nil
	})

	befriend(t, svc, "a", "b")

	assert.Equal(t, []hookCall{{"a", "b"}}, calls)
}
