// internal/events/scorer.go

package events

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/geo"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// Weights are the factor weights of the recommendation score. They sum to 1.
type Weights struct {
	Interest   float64
	Affinity   float64
	Semantic   float64
	Timing     float64
	Popularity float64
	Proximity  float64
	Organizer  float64
	Price      float64
}

// DefaultWeights are the production weights
var DefaultWeights = Weights{
	Interest:   0.25,
	Affinity:   0.20,
	Semantic:   0.15,
	Timing:     0.15,
	Popularity: 0.10,
	Proximity:  0.10,
	Organizer:  0.03,
	Price:      0.02,
}

// Neutral values used when a signal is missing
const (
	neutralAffinity  = 0.5
	neutralSemantic  = 0.5
	neutralTiming    = 0.7
	neutralProximity = 0.7
	unverifiedScore  = 0.7
	paidScore        = 0.6

	popularityCap = 100.0

	recentCategoryBonus  = 0.10
	recentCategoryWindow = 30 * 24 * time.Hour
	trendingBonus        = 0.05
	trendingPerDay       = 5.0
	upcomingBonus        = 0.05
	upcomingMinDays      = 3.0
	upcomingMaxDays      = 14.0
)

// Breakdown holds each normalized factor, the bonus total and the clamped
// final score
type Breakdown struct {
	Interest   float64 `json:"interest"`
	Affinity   float64 `json:"affinity"`
	Semantic   float64 `json:"semantic"`
	Timing     float64 `json:"timing"`
	Popularity float64 `json:"popularity"`
	Proximity  float64 `json:"proximity"`
	Organizer  float64 `json:"organizer"`
	Price      float64 `json:"price"`
	Bonus      float64 `json:"bonus"`
	Total      float64 `json:"total"`
}

// Scorer ranks events for a user. It is a pure function of its inputs and
// the injected clock.
type Scorer struct {
	weights Weights
	now     func() time.Time
	loc     *time.Location
}

// ScorerOption configures a Scorer
type ScorerOption func(*Scorer)

// WithScorerClock sets the clock used for bonuses
func WithScorerClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

// WithLocation sets the time zone used for hour and weekday matching
func WithLocation(loc *time.Location) ScorerOption {
	return func(s *Scorer) { s.loc = loc }
}

// WithWeights overrides the factor weights
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// NewScorer creates a Scorer with the default weights
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{weights: DefaultWeights, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the recommendation score of event for user, in [0, 1].
// engaged are events the user actively engaged with; rsvps is the user's
// RSVP history.
func (s *Scorer) Score(user *profile.UserProfile, event *EventRecord, engaged []*EventRecord, rsvps []*EngagementRecord) float64 {
	return s.Breakdown(user, event, engaged, rsvps).Total
}

// Breakdown computes every factor of the score
func (s *Scorer) Breakdown(user *profile.UserProfile, event *EventRecord, engaged []*EventRecord, rsvps []*EngagementRecord) Breakdown {
	now := s.now()
	b := Breakdown{
		Interest:   interestOverlap(event, user.Interests),
		Affinity:   categoryAffinity(event, engaged),
		Semantic:   semanticSimilarity(event, engaged),
		Timing:     s.timingFit(event, rsvps),
		Popularity: math.Min(1, float64(event.RSVPCount)/popularityCap),
		Proximity:  proximity(user, event),
		Organizer:  unverifiedScore,
		Price:      paidScore,
	}
	if event.Organizer.Verified {
		b.Organizer = 1
	}
	if event.Price.IsFree {
		b.Price = 1
	}

	w := s.weights
	raw := b.Interest*w.Interest +
		b.Affinity*w.Affinity +
		b.Semantic*w.Semantic +
		b.Timing*w.Timing +
		b.Popularity*w.Popularity +
		b.Proximity*w.Proximity +
		b.Organizer*w.Organizer +
		b.Price*w.Price

	if recentCategoryMatch(event, engaged, now) {
		b.Bonus += recentCategoryBonus
	}
	if isTrending(event, now) {
		b.Bonus += trendingBonus
	}
	if startsSoon(event, now) {
		b.Bonus += upcomingBonus
	}

	b.Total = math.Max(0, math.Min(1, raw+b.Bonus))
	return b
}

// Explain returns up to three reasons to attend, most specific first
func (s *Scorer) Explain(user *profile.UserProfile, event *EventRecord, engaged []*EventRecord, rsvps []*EngagementRecord) []string {
	now := s.now()
	b := s.Breakdown(user, event, engaged, rsvps)
	reasons := make([]string, 0, 3)
	add := func(r string) {
		if len(reasons) < 3 {
			reasons = append(reasons, r)
		}
	}

	if matched := MatchedInterests(event, user.Interests); len(matched) > 0 {
		add("Matches your interests: " + strings.Join(matched, ", "))
	}
	if len(engaged) > 0 && b.Affinity >= 0.5 {
		add("Similar to events you've engaged with")
	}
	if isTrending(event, now) {
		add("Trending on campus right now")
	} else if event.RSVPCount >= 25 {
		add(fmt.Sprintf("Popular: %d students are going", event.RSVPCount))
	}
	if d, ok := distanceTo(user, event); ok && d < 5 {
		add(fmt.Sprintf("Close to you (%.1f km away)", d))
	}
	if event.Price.IsFree {
		add("Free to attend")
	}
	if event.Organizer.Verified {
		add("Hosted by a verified organizer")
	}
	if startsSoon(event, now) {
		add("Coming up in the next two weeks")
	}
	return reasons
}

// MatchedInterests returns the event categories the user is interested in,
// in event category order
func MatchedInterests(event *EventRecord, interests []string) []string {
	want := make(map[string]struct{}, len(interests))
	for _, i := range interests {
		want[normalize(i)] = struct{}{}
	}
	matched := make([]string, 0)
	seen := make(map[string]struct{})
	for _, c := range event.Categories {
		key := normalize(c)
		if _, ok := want[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matched = append(matched, c)
	}
	return matched
}

func interestOverlap(event *EventRecord, interests []string) float64 {
	if len(event.Categories) == 0 {
		return 0
	}
	overlap := float64(len(MatchedInterests(event, interests)))
	return math.Min(1, overlap/math.Max(1, float64(len(interests))))
}

func categoryAffinity(event *EventRecord, engaged []*EventRecord) float64 {
	if len(engaged) == 0 {
		return neutralAffinity
	}

	counts := make(map[string]int)
	total := 0
	for _, e := range engaged {
		for _, c := range e.Categories {
			counts[normalize(c)]++
			total++
		}
	}
	if total == 0 {
		return neutralAffinity
	}

	best := 0
	for _, c := range event.Categories {
		if n := counts[normalize(c)]; n > best {
			best = n
		}
	}
	return float64(best) / float64(total)
}

func semanticSimilarity(event *EventRecord, engaged []*EventRecord) float64 {
	if len(engaged) == 0 {
		return neutralSemantic
	}
	kw := Keywords(event)
	best := 0.0
	for _, e := range engaged {
		if sim := Jaccard(kw, Keywords(e)); sim > best {
			best = sim
		}
	}
	return best
}

// timingFit averages how often the user RSVPs at the event's hour and on its
// weekday
func (s *Scorer) timingFit(event *EventRecord, rsvps []*EngagementRecord) float64 {
	if len(rsvps) == 0 {
		return neutralTiming
	}
	start := event.StartDate.In(s.loc)
	sameHour, sameDay := 0, 0
	for _, r := range rsvps {
		at := r.CreatedAt.In(s.loc)
		if at.Hour() == start.Hour() {
			sameHour++
		}
		if at.Weekday() == start.Weekday() {
			sameDay++
		}
	}
	n := float64(len(rsvps))
	return (float64(sameHour)/n + float64(sameDay)/n) / 2
}

func proximity(user *profile.UserProfile, event *EventRecord) float64 {
	maxDistance, ok := user.MaxDistance()
	if !ok {
		return neutralProximity
	}
	d, ok := distanceTo(user, event)
	if !ok {
		return neutralProximity
	}
	return math.Max(0, 1-d/maxDistance)
}

func distanceTo(user *profile.UserProfile, event *EventRecord) (float64, bool) {
	if user.Location == nil || event.Location == nil || event.Location.IsVirtual {
		return 0, false
	}
	return geo.Distance(user.Location.Lat, user.Location.Lon, event.Location.Lat, event.Location.Lon), true
}

func recentCategoryMatch(event *EventRecord, engaged []*EventRecord, now time.Time) bool {
	if len(event.Categories) == 0 {
		return false
	}
	cats := make(map[string]struct{}, len(event.Categories))
	for _, c := range event.Categories {
		cats[normalize(c)] = struct{}{}
	}
	cutoff := now.Add(-recentCategoryWindow)
	for _, e := range engaged {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		for _, c := range e.Categories {
			if _, ok := cats[normalize(c)]; ok {
				return true
			}
		}
	}
	return false
}

func isTrending(event *EventRecord, now time.Time) bool {
	days := math.Max(1, now.Sub(event.CreatedAt).Hours()/24)
	return float64(event.RSVPCount)/days > trendingPerDay
}

func startsSoon(event *EventRecord, now time.Time) bool {
	days := event.StartDate.Sub(now).Hours() / 24
	return days >= upcomingMinDays && days <= upcomingMaxDays
}

// Rank scores every event and returns them best first. Ties are broken by
// earlier start, then id.
func (s *Scorer) Rank(user *profile.UserProfile, pool []*EventRecord, engaged []*EventRecord, rsvps []*EngagementRecord) []ScoredEvent {
	out := make([]ScoredEvent, 0, len(pool))
	for _, e := range pool {
		out = append(out, ScoredEvent{
			EventRecord:         *e,
			RecommendationScore: s.Score(user, e, engaged, rsvps),
			MatchedInterests:    MatchedInterests(e, user.Interests),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecommendationScore != out[j].RecommendationScore {
			return out[i].RecommendationScore > out[j].RecommendationScore
		}
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
