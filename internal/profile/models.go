// internal/profile/models.go

package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Profile visibility values
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// UserProfile is the student profile read by the recommendation and
// matching engines.
type UserProfile struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
	Interests   []string    `json:"interests"`
	Location    *Location   `json:"location,omitempty"`
	Preferences Preferences `json:"preferences"`
	University  string      `json:"university"`
	Year        string      `json:"year"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Location is a coordinate in decimal degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Preferences holds discovery preferences. Stored as a JSON column.
type Preferences struct {
	MaxDistanceKm        *float64        `json:"max_distance_km,omitempty"`
	BuddyMatchingEnabled *bool           `json:"buddy_matching_enabled,omitempty"`
	Privacy              PrivacySettings `json:"privacy"`
}

// PrivacySettings represents user privacy preferences
type PrivacySettings struct {
	ProfileVisibility   string `json:"profile_visibility,omitempty"` // public, friends, private
	ShowInBuddyMatching *bool  `json:"show_in_buddy_matching,omitempty"`
	ShowLocation        *bool  `json:"show_location,omitempty"`
}

// Scan implements the sql.Scanner interface for Preferences
func (p *Preferences) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("preferences: unsupported type %T", value)
	}
}

// Value implements the driver.Valuer interface for Preferences
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// MatchingEnabled reports whether the user opted into buddy matching.
// Unset means enabled.
func (u *UserProfile) MatchingEnabled() bool {
	return u.Preferences.BuddyMatchingEnabled == nil || *u.Preferences.BuddyMatchingEnabled
}

// DiscoverableInMatches reports whether the user may be suggested to others.
func (u *UserProfile) DiscoverableInMatches() bool {
	if !u.MatchingEnabled() {
		return false
	}
	show := u.Preferences.Privacy.ShowInBuddyMatching
	return show == nil || *show
}

// ProfileVisible reports whether the profile may be listed to other
// students, e.g. as a mutual friend.
func (u *UserProfile) ProfileVisible() bool {
	return u.Preferences.Privacy.ProfileVisibility != VisibilityPrivate
}

// MaxDistance returns the preferred search radius in km, if set.
func (u *UserProfile) MaxDistance() (float64, bool) {
	if u.Preferences.MaxDistanceKm == nil || *u.Preferences.MaxDistanceKm <= 0 {
		return 0, false
	}
	return *u.Preferences.MaxDistanceKm, true
}

// InterestSet returns the interests as a set.
func (u *UserProfile) InterestSet() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Interests))
	for _, interest := range u.Interests {
		set[interest] = struct{}{}
	}
	return set
}

// PublicProfile is what other students see
type PublicProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Interests   []string  `json:"interests"`
	University  string    `json:"university,omitempty"`
	Year        string    `json:"year,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

// VisibleTo applies the visibility setting for a viewer other than the owner
func (u *UserProfile) VisibleTo(viewerIsFriend bool) bool {
	switch u.Preferences.Privacy.ProfileVisibility {
	case VisibilityPrivate:
		return false
	case VisibilityFriends:
		return viewerIsFriend
	default:
		return true
	}
}

// Public strips preferences and, unless shared, the location
func (u *UserProfile) Public() *PublicProfile {
	p := &PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Interests:   u.Interests,
		University:  u.University,
		Year:        u.Year,
	}
	if show := u.Preferences.Privacy.ShowLocation; show == nil || *show {
		p.Location = u.Location
	}
	return p
}
