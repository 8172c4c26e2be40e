package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestDiscoverableInMatches(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		want  bool
	}{
		{"defaults", Preferences{}, true},
		{"matching disabled", Preferences{BuddyMatchingEnabled: boolPtr(false)}, false},
		{"hidden by privacy", Preferences{Privacy: PrivacySettings{ShowInBuddyMatching: boolPtr(false)}}, false},
		{"explicitly enabled", Preferences{BuddyMatchingEnabled: boolPtr(true), Privacy: PrivacySettings{ShowInBuddyMatching: boolPtr(true)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &UserProfile{Preferences: tt.prefs}
			assert.Equal(t, tt.want, u.DiscoverableInMatches())
		})
	}
}

func TestProfileVisible(t *testing.T) {
	u := &UserProfile{}
	assert.True(t, u.ProfileVisible())

	u.Preferences.Privacy.ProfileVisibility = VisibilityFriends
	assert.True(t, u.ProfileVisible())

	u.Preferences.Privacy.ProfileVisibility = VisibilityPrivate
	assert.False(t, u.ProfileVisible())
}

func TestMaxDistance(t *testing.T) {
	u := &UserProfile{}
	_, ok := u.MaxDistance()
	assert.False(t, ok)

	zero := 0.0
	u.Preferences.MaxDistanceKm = &zero
	_, ok = u.MaxDistance()
	assert.False(t, ok)

	km := 25.0
	u.Preferences.MaxDistanceKm = &km
	d, ok := u.MaxDistance()
	assert.True(t, ok)
	assert.Equal(t, 25.0, d)
}

func TestPreferencesScanValue(t *testing.T) {
	km := 10.0
	in := Preferences{MaxDistanceKm: &km, Privacy: PrivacySettings{ProfileVisibility: VisibilityPrivate}}

	raw, err := in.Value()
	require.NoError(t, err)

	var out Preferences
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Error(t, out.Scan(42))
}

func TestVisibleTo(t *testing.T) {
	tests := []struct {
		visibility string
		friend     bool
		want       bool
	}{
		{"", false, true},
		{VisibilityPublic, false, true},
		{VisibilityFriends, false, false},
		{VisibilityFriends, true, true},
		{VisibilityPrivate, true, false},
	}
	for _, tt := range tests {
		u := &UserProfile{Preferences: Preferences{Privacy: PrivacySettings{ProfileVisibility: tt.visibility}}}
		assert.Equal(t, tt.want, u.VisibleTo(tt.friend), "visibility=%q friend=%v", tt.visibility, tt.friend)
	}
}

func TestPublicHidesLocation(t *testing.T) {
	u := &UserProfile{ID: "u1", DisplayName: "Ada", Location: &Location{Lat: 49.26, Lon: -123.25}}
	assert.Equal(t, u.Location, u.Public().Location)

	u.Preferences.Privacy.ShowLocation = boolPtr(false)
	assert.Nil(t, u.Public().Location)
	assert.Equal(t, "Ada", u.Public().DisplayName)
}
