package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	events      []*EventRecord
	engagements []*EngagementRecord
}

func (f *fakeEventRepo) ListUpcomingEvents(_ context.Context, from time.Time) ([]*EventRecord, error) {
	var out []*EventRecord
	for _, e := range f.events {
		if e.StartDate.After(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetEventsByIDs(_ context.Context, ids []string) ([]*EventRecord, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*EventRecord
	for _, e := range f.events {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) EngagementsOf(_ context.Context, userID string) ([]*EngagementRecord, error) {
	var out []*EngagementRecord
	for _, r := range f.engagements {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeProfiles map[string]*profile.UserProfile

func (f fakeProfiles) GetProfile(_ context.Context, id string) (*profile.UserProfile, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, profile.ErrProfileNotFound
}

func (f fakeProfiles) GetProfiles(_ context.Context, ids []string) (map[string]*profile.UserProfile, error) {
	out := map[string]*profile.UserProfile{}
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f fakeProfiles) ListProfiles(context.Context) ([]*profile.UserProfile, error) {
	var out []*profile.UserProfile
	for _, p := range f {
		out = append(out, p)
	}
	return out, nil
}

type countingExplainer struct {
	calls int
	err   error
}

func (c *countingExplainer) Explain(context.Context, *profile.UserProfile, *EventRecord) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []string{"one", "two", "three", "four"}, nil
}

func newFixture() (*fakeEventRepo, fakeProfiles) {
	day := 24 * time.Hour
	repo := &fakeEventRepo{
		events: []*EventRecord{
			{ID: "past", Categories: []string{"tech"}, StartDate: testNow.Add(-day), CreatedAt: testNow.Add(-40 * day)},
			{ID: "tech", Categories: []string{"tech"}, StartDate: testNow.Add(20 * day), CreatedAt: testNow.Add(-40 * day)},
			{ID: "music", Categories: []string{"music"}, StartDate: testNow.Add(20 * day), CreatedAt: testNow.Add(-40 * day)},
			{ID: "art", Categories: []string{"art"}, StartDate: testNow.Add(21 * day), CreatedAt: testNow.Add(-40 * day)},
			{ID: "going", Categories: []string{"tech"}, StartDate: testNow.Add(22 * day), CreatedAt: testNow.Add(-40 * day)},
		},
		engagements: []*EngagementRecord{
			{UserID: "u1", EventID: "going", Kind: KindRSVP, Status: RSVPGoing, CreatedAt: testNow.Add(-day)},
			{UserID: "u1", EventID: "past", Kind: KindRSVP, Status: RSVPNotGoing, CreatedAt: testNow.Add(-day)},
		},
	}
	profiles := fakeProfiles{"u1": {ID: "u1", Interests: []string{"tech", "music"}}}
	return repo, profiles
}

func newTestService(repo Repository, profiles profile.Reader, opts ...Option) *Service {
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewService(repo, profiles, newTestScorer(), opts...)
}

func TestGetEventRecommendations(t *testing.T) {
	repo, profiles := newFixture()
	svc := newTestService(repo, profiles)

	recs, err := svc.GetEventRecommendations(context.Background(), "u1", 10, 0)
	require.NoError(t, err)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
		assert.GreaterOrEqual(t, r.RecommendationScore, 0.0)
		assert.LessOrEqual(t, r.RecommendationScore, 1.0)
		assert.LessOrEqual(t, len(r.ReasonsToAttend), 3)
	}
	// past events and events the user is already going to are excluded
	assert.Equal(t, []string{"tech", "music", "art"}, ids)
	assert.Equal(t, []string{"tech"}, recs[0].MatchedInterests)
}

func TestGetEventRecommendationsPaginates(t *testing.T) {
	repo, profiles := newFixture()
	svc := newTestService(repo, profiles)
	ctx := context.Background()

	page, err := svc.GetEventRecommendations(ctx, "u1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = svc.GetEventRecommendations(ctx, "u1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "art", page[0].ID)

	page, err = svc.GetEventRecommendations(ctx, "u1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestGetEventRecommendationsUnknownUser(t *testing.T) {
	repo, profiles := newFixture()
	svc := newTestService(repo, profiles)

	_, err := svc.GetEventRecommendations(context.Background(), "ghost", 10, 0)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestExplainerFallsBackAndStopsCallingWhenUnhealthy(t *testing.T) {
	repo, profiles := newFixture()
	explainer := &countingExplainer{err: errors.New("llm timeout")}
	health := NewHealthTracker(5*time.Minute, 3, fixedClock)
	svc := newTestService(repo, profiles, WithExplainer(explainer, health))

	recs, err := svc.GetEventRecommendations(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 3, explainer.calls)
	assert.Equal(t, "Matches your interests: tech", recs[0].ReasonsToAttend[0])
	assert.False(t, health.Snapshot().Healthy)

	_, err = svc.GetEventRecommendations(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, explainer.calls)
}

func TestExplainerReasonsAreCapped(t *testing.T) {
	repo, profiles := newFixture()
	explainer := &countingExplainer{}
	svc := newTestService(repo, profiles, WithExplainer(explainer, NewHealthTracker(5*time.Minute, 3, fixedClock)))

	recs, err := svc.GetEventRecommendations(context.Background(), "u1", 1, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"one", "two", "three"}, recs[0].ReasonsToAttend)
}
