// internal/matching/scorer.go

package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/geo"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// Point values. Scores are additive and unbounded; thresholds are tuned
// against these raw totals.
const (
	universityPoints = 20
	yearPoints       = 10

	interestPoints    = 5
	maxInterestPoints = 25

	mutualFriendPoints    = 10
	maxMutualFriendPoints = 30

	commonEventPoints    = 3
	maxCommonEventPoints = 15

	nearbyPoints = 10 // < 5 km
	closePoints  = 7  // < 15 km
	areaPoints   = 3  // < 50 km
)

// DistanceFunc returns the distance in km between two coordinates
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// Signals are the graph and event facts the scorer needs about a pair
type Signals struct {
	MutualFriendIDs []string
	CommonEventIDs  []string
}

// MatchResult is the compatibility of a candidate with the target user
type MatchResult struct {
	Score   int
	Reasons []string
	Details ConnectionDetails
}

// Scorer computes buddy compatibility
type Scorer struct {
	distance DistanceFunc
}

// NewScorer creates a Scorer. A nil distance function means geo.Distance.
func NewScorer(distance DistanceFunc) *Scorer {
	if distance == nil {
		distance = geo.Distance
	}
	return &Scorer{distance: distance}
}

// Score rates b as a buddy for a. Reasons follow the order university, year,
// interests, mutual friends, common events, distance; zero contributions add
// no reason.
func (s *Scorer) Score(a, b *profile.UserProfile, sig Signals) MatchResult {
	var r MatchResult
	r.Reasons = make([]string, 0, 6)
	r.Details.SharedInterests = sharedInterests(a.Interests, b.Interests)
	r.Details.MutualFriendIDs = nonNil(sig.MutualFriendIDs)
	r.Details.MutualFriendCount = len(sig.MutualFriendIDs)
	r.Details.CommonEventIDs = nonNil(sig.CommonEventIDs)

	if a.University != "" && strings.EqualFold(a.University, b.University) {
		r.Score += universityPoints
		r.Details.SameUniversity = true
		r.Reasons = append(r.Reasons, "Both study at "+b.University)
	}

	if a.Year != "" && strings.EqualFold(a.Year, b.Year) {
		r.Score += yearPoints
		r.Details.SameYear = true
		r.Reasons = append(r.Reasons, "Same year ("+b.Year+")")
	}

	if n := len(r.Details.SharedInterests); n > 0 {
		r.Score += min(maxInterestPoints, interestPoints*n)
		r.Reasons = append(r.Reasons, fmt.Sprintf("%s: %s",
			plural(n, "shared interest"), strings.Join(r.Details.SharedInterests, ", ")))
	}

	if n := len(sig.MutualFriendIDs); n > 0 {
		r.Score += min(maxMutualFriendPoints, mutualFriendPoints*n)
		r.Reasons = append(r.Reasons, plural(n, "mutual friend"))
	}

	if n := len(sig.CommonEventIDs); n > 0 {
		r.Score += min(maxCommonEventPoints, commonEventPoints*n)
		r.Reasons = append(r.Reasons, "Going to "+plural(n, "same event"))
	}

	if a.Location != nil && b.Location != nil {
		d := s.distance(a.Location.Lat, a.Location.Lon, b.Location.Lat, b.Location.Lon)
		r.Details.DistanceKm = &d
		if pts := proximityPoints(d); pts > 0 {
			r.Score += pts
			r.Reasons = append(r.Reasons, fmt.Sprintf("Lives nearby (%.1f km away)", d))
		}
	}

	return r
}

func proximityPoints(km float64) int {
	switch {
	case km < 5:
		return nearbyPoints
	case km < 15:
		return closePoints
	case km < 50:
		return areaPoints
	default:
		return 0
	}
}

// sharedInterests returns a's interests that b also has, case-insensitively,
// sorted
func sharedInterests(a, b []string) []string {
	theirs := make(map[string]struct{}, len(b))
	for _, i := range b {
		theirs[strings.ToLower(strings.TrimSpace(i))] = struct{}{}
	}
	seen := make(map[string]struct{})
	shared := make([]string, 0)
	for _, i := range a {
		key := strings.ToLower(strings.TrimSpace(i))
		if _, ok := theirs[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, i)
	}
	sort.Strings(shared)
	return shared
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// signalLoader resolves Signals against a (possibly transaction-bound)
// repository. The target user's going events are loaded once.
type signalLoader struct {
	graph       *friends.Graph
	engagements events.EngagementReader
	targetGoing map[string]struct{}
}

func newSignalLoader(ctx context.Context, repo Repository, targetID string) (*signalLoader, error) {
	records, err := repo.EngagementsOf(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load engagements: %w", err)
	}
	return &signalLoader{
		graph:       friends.NewGraph(repo, repo),
		engagements: repo,
		targetGoing: events.GoingEventIDs(records),
	}, nil
}

func (l *signalLoader) load(ctx context.Context, targetID, candidateID string) (Signals, error) {
	mutual, err := l.graph.MutualFriends(ctx, targetID, candidateID)
	if err != nil {
		return Signals{}, err
	}

	var common []string
	if len(l.targetGoing) > 0 {
		records, err := l.engagements.EngagementsOf(ctx, candidateID)
		if err != nil {
			return Signals{}, fmt.Errorf("failed to load engagements: %w", err)
		}
		for id := range events.GoingEventIDs(records) {
			if _, ok := l.targetGoing[id]; ok {
				common = append(common, id)
			}
		}
		sort.Strings(common)
	}

	return Signals{MutualFriendIDs: mutual, CommonEventIDs: common}, nil
}
