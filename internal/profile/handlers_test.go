package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/memstore"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h *profile.Handler, viewer, target string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/users/"+target+"/profile", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", target)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(auth.WithUserID(ctx, viewer))

	rec := httptest.NewRecorder()
	h.GetUserProfile(rec, req)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body.Data
}

func TestGetUserProfileVisibility(t *testing.T) {
	store := memstore.New()
	hidden := false
	store.AddProfile(&profile.UserProfile{ID: "viewer", DisplayName: "Viewer"})
	store.AddProfile(&profile.UserProfile{ID: "stranger", DisplayName: "Stranger"})
	open := &profile.UserProfile{ID: "open", DisplayName: "Open", Location: &profile.Location{Lat: 1, Lon: 2}}
	open.Preferences.Privacy.ShowLocation = &hidden
	store.AddProfile(open)
	friendsOnly := &profile.UserProfile{ID: "friendly", DisplayName: "Friendly"}
	friendsOnly.Preferences.Privacy.ProfileVisibility = profile.VisibilityFriends
	store.AddProfile(friendsOnly)
	private := &profile.UserProfile{ID: "private", DisplayName: "Private"}
	private.Preferences.Privacy.ProfileVisibility = profile.VisibilityPrivate
	store.AddProfile(private)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.AddEdge(&friends.FriendEdge{ID: "e1", RequesterID: "viewer", ReceiverID: "friendly", Status: friends.StatusAccepted, CreatedAt: now})
	store.AddEdge(&friends.FriendEdge{ID: "e2", RequesterID: "open", ReceiverID: "stranger", Status: friends.StatusBlocked, CreatedAt: now})

	h := profile.NewHandler(store, friends.NewGraph(store, store))

	code, data := get(t, h, "viewer", "open")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Open", data["display_name"])
	assert.NotContains(t, data, "location")
	assert.NotContains(t, data, "preferences")

	code, _ = get(t, h, "viewer", "friendly")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(t, h, "stranger", "friendly")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, "viewer", "private")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, "stranger", "open")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, "viewer", "missing")
	assert.Equal(t, http.StatusNotFound, code)

	code, data = get(t, h, "private", "private")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, data, "preferences")
}
