// internal/matching/manager.go

package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/messaging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/rs/zerolog"
)

// ExpiredReason is the reject reason set by the expiry job
const ExpiredReason = "expired"

// Config holds the tunable generation constants
type Config struct {
	PrimaryThreshold  int
	FallbackThreshold int
	FallbackPoolSize  int
	FallbackLimit     int
	DedupWindow       time.Duration
	DefaultLimit      int
	MaxLimit          int
	LockTTL           time.Duration
	SuggestionExpiry  time.Duration
}

// DefaultConfig returns the tuned production constants
func DefaultConfig() Config {
	return Config{
		PrimaryThreshold:  15,
		FallbackThreshold: 5,
		FallbackPoolSize:  5,
		FallbackLimit:     3,
		DedupWindow:       24 * time.Hour,
		DefaultLimit:      10,
		MaxLimit:          50,
		LockTTL:           30 * time.Second,
		SuggestionExpiry:  7 * 24 * time.Hour,
	}
}

func (c Config) clampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}

// Manager owns the suggestion lifecycle:
// generate -> pending -> viewed -> accepted | rejected, and accepted -> connected
// once the resulting friend request is accepted.
type Manager struct {
	store    Store
	scorer   *Scorer
	locker   Locker
	starter  *messaging.Starter
	audit    AuditSink
	notifier friends.Notifier
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithConfig overrides the generation constants
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithScorer overrides the buddy scorer
func WithScorer(s *Scorer) Option {
	return func(m *Manager) { m.scorer = s }
}

// WithLocker sets the generation lock. The default is in-process only.
func WithLocker(l Locker) Option {
	return func(m *Manager) { m.locker = l }
}

// WithAuditSink mirrors committed interactions to sink
func WithAuditSink(sink AuditSink) Option {
	return func(m *Manager) { m.audit = sink }
}

// WithNotifier sets the realtime notifier
func WithNotifier(n friends.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the manager logger
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a lifecycle manager over store
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		scorer: NewScorer(nil),
		locker: NewLocalLocker(),
		audit:  nopAuditSink{},
		cfg:    DefaultConfig(),
		now:    time.Now,
		log:    logging.Component("matching"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.starter = messaging.NewStarter(m.now)
	return m
}

type candidate struct {
	profile *profile.UserProfile
	result  MatchResult
}

// Generate scores the candidate pool for userID and persists the best
// candidates as pending suggestions. The pool read, the dedup check and the
// inserts run in one transaction while holding the user's generation lock.
func (m *Manager) Generate(ctx context.Context, userID string, limit int) ([]*SuggestionView, error) {
	limit = m.cfg.clampLimit(limit)
	start := time.Now()
	defer func() { generationDuration.Observe(time.Since(start).Seconds()) }()

	target, err := m.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !target.MatchingEnabled() {
		return nil, ErrMatchingDisabled
	}

	unlock, err := m.locker.Lock(ctx, "match:generate:"+userID, m.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		created  []*SuggestionView
		fallback bool
	)
	err = m.store.WithTx(ctx, func(repo Repository) error {
		created, fallback = nil, false
		if err := repo.LockUser(ctx, userID); err != nil {
			return err
		}

		pool, err := m.candidatePool(ctx, repo, target)
		if err != nil {
			return err
		}

		primary, fallbackPicks, err := m.rank(ctx, repo, target, pool)
		if err != nil {
			return err
		}

		created, err = m.persist(ctx, repo, userID, primary, limit)
		if err != nil {
			return err
		}
		if len(created) == 0 && len(fallbackPicks) > 0 {
			fallback = true
			created, err = m.persist(ctx, repo, userID, fallbackPicks, min(m.cfg.FallbackLimit, limit))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []*SuggestionView{}
	}

	source := "primary"
	if fallback {
		source = "fallback"
	}
	suggestionsGenerated.WithLabelValues(source).Add(float64(len(created)))
	for _, v := range created {
		matchScores.Observe(float64(v.MatchScore))
	}

	m.logger(ctx).Info().
		Str("user_id", userID).
		Int("created", len(created)).
		Bool("fallback", fallback).
		Msg("match suggestions generated")

	if len(created) > 0 {
		m.notify(userID, messaging.WSTypeMatchSuggestions, map[string]int{"count": len(created)})
	}
	return created, nil
}

// candidatePool returns every user that may be suggested to target, in
// profile listing order
func (m *Manager) candidatePool(ctx context.Context, repo Repository, target *profile.UserProfile) ([]*profile.UserProfile, error) {
	users, err := repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	graph := friends.NewGraph(repo, repo)
	excluded, err := graph.NeighborIDs(ctx, target.ID, friends.StatusPending, friends.StatusAccepted, friends.StatusBlocked)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend edges: %w", err)
	}

	recent, err := repo.RecentActiveSuggestionsFor(ctx, target.ID, m.now().UTC().Add(-m.cfg.DedupWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent suggestions: %w", err)
	}
	for _, s := range recent {
		excluded[s.SuggestedUserID] = struct{}{}
	}

	pool := make([]*profile.UserProfile, 0, len(users))
	for _, u := range users {
		if u.ID == target.ID || !u.DiscoverableInMatches() {
			continue
		}
		if _, ok := excluded[u.ID]; ok {
			continue
		}
		pool = append(pool, u)
	}
	return pool, nil
}

// rank scores the pool and returns the primary matches best first, plus the
// fallback matches to use when no primary match can be stored
func (m *Manager) rank(ctx context.Context, repo Repository, target *profile.UserProfile, pool []*profile.UserProfile) ([]candidate, []candidate, error) {
	if len(pool) == 0 {
		return nil, nil, nil
	}

	loader, err := newSignalLoader(ctx, repo, target.ID)
	if err != nil {
		return nil, nil, err
	}

	scored := make([]candidate, 0, len(pool))
	for _, p := range pool {
		sig, err := loader.load(ctx, target.ID, p.ID)
		if err != nil {
			return nil, nil, err
		}
		scored = append(scored, candidate{profile: p, result: m.scorer.Score(target, p, sig)})
	}

	var primary, fallback []candidate
	for _, c := range scored {
		if c.result.Score >= m.cfg.PrimaryThreshold {
			primary = append(primary, c)
		}
	}
	for _, c := range scored[:min(m.cfg.FallbackPoolSize, len(scored))] {
		if c.result.Score < m.cfg.FallbackThreshold {
			continue
		}
		if len(c.result.Reasons) == 0 {
			c.result.Reasons = []string{DefaultFallbackReason}
		}
		c.result.Details.Fallback = true
		fallback = append(fallback, c)
	}
	sortCandidates(primary)
	sortCandidates(fallback)
	return primary, fallback, nil
}

// persist stores ranked candidates as pending suggestions until limit are
// created. A candidate that already has an active suggestion outside the
// dedup window is skipped and the next one takes its slot.
func (m *Manager) persist(ctx context.Context, repo Repository, userID string, ranked []candidate, limit int) ([]*SuggestionView, error) {
	var created []*SuggestionView
	now := m.now().UTC()
	for _, c := range ranked {
		if len(created) >= limit {
			break
		}
		s := &MatchSuggestion{
			ID:                uuid.New().String(),
			SuggestedToUserID: userID,
			SuggestedUserID:   c.profile.ID,
			MatchScore:        c.result.Score,
			Reasons:           c.result.Reasons,
			ConnectionDetails: c.result.Details,
			Status:            StatusPending,
			CreatedAt:         now,
		}
		if err := repo.CreateSuggestion(ctx, s); err != nil {
			if errors.Is(err, ErrDuplicateSuggestion) {
				duplicateSuggestionsSkipped.Inc()
				continue
			}
			return nil, fmt.Errorf("failed to create suggestion: %w", err)
		}
		created = append(created, &SuggestionView{MatchSuggestion: *s, SuggestedUser: summaryOf(c.profile)})
	}
	return created, nil
}

func sortCandidates(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].result.Score != cs[j].result.Score {
			return cs[i].result.Score > cs[j].result.Score
		}
		return cs[i].profile.ID < cs[j].profile.ID
	})
}

// GetSuggestions returns the caller's pending and viewed suggestions, newest
// first
func (m *Manager) GetSuggestions(ctx context.Context, userID string, limit int) ([]*SuggestionView, error) {
	limit = m.cfg.clampLimit(limit)
	suggestions, err := m.store.ListSuggestions(ctx, userID, ActiveStatuses, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	ids := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.SuggestedUserID)
	}
	profiles, err := m.store.GetProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggested profiles: %w", err)
	}

	views := make([]*SuggestionView, 0, len(suggestions))
	for _, s := range suggestions {
		views = append(views, &SuggestionView{MatchSuggestion: *s, SuggestedUser: summaryOf(profiles[s.SuggestedUserID])})
	}
	return views, nil
}

// owned loads a suggestion and checks that callerID received it
func owned(ctx context.Context, repo Repository, suggestionID, callerID string) (*MatchSuggestion, error) {
	s, err := repo.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if s.SuggestedToUserID != callerID {
		return nil, ErrNotSuggestionOwner
	}
	return s, nil
}

func (m *Manager) interaction(s *MatchSuggestion, action InteractionAction, at time.Time, metadata map[string]interface{}) *MatchInteraction {
	return &MatchInteraction{
		ID:           uuid.New().String(),
		FromUserID:   s.SuggestedToUserID,
		ToUserID:     s.SuggestedUserID,
		Action:       action,
		SuggestionID: s.ID,
		Timestamp:    at,
		Metadata:     metadata,
	}
}

func recordAll(ctx context.Context, repo Repository, interactions ...*MatchInteraction) error {
	for _, i := range interactions {
		if err := repo.CreateInteraction(ctx, i); err != nil {
			return fmt.Errorf("failed to record %s interaction: %w", i.Action, err)
		}
	}
	return nil
}

// MarkViewed moves a pending suggestion to viewed. It reports whether the
// suggestion changed; suggestions in any other status are left alone.
func (m *Manager) MarkViewed(ctx context.Context, callerID, suggestionID string) (bool, error) {
	var logged *MatchInteraction
	err := m.store.WithTx(ctx, func(repo Repository) error {
		logged = nil
		s, err := owned(ctx, repo, suggestionID, callerID)
		if err != nil {
			return err
		}
		if s.Status != StatusPending {
			return nil
		}

		now := m.now().UTC()
		s.Status = StatusViewed
		s.ViewedAt = &now
		if err := repo.UpdateSuggestion(ctx, s); err != nil {
			return err
		}
		logged = m.interaction(s, ActionViewed, now, nil)
		return recordAll(ctx, repo, logged)
	})
	if err != nil {
		return false, err
	}
	if logged == nil {
		return false, nil
	}

	suggestionResponses.WithLabelValues(string(ActionViewed)).Inc()
	m.mirror(ctx, logged)
	return true, nil
}

// MarkSuggestionsViewed marks each id viewed in its own transaction and
// returns how many changed. Ids the caller does not own or that are not
// pending are skipped; a failure on one id does not stop the batch.
func (m *Manager) MarkSuggestionsViewed(ctx context.Context, callerID string, ids []string) (int, error) {
	seen := make(map[string]struct{}, len(ids))
	updated := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			return updated, err
		}

		changed, err := m.MarkViewed(ctx, callerID, id)
		if err != nil {
			if !errors.Is(err, utils.ErrNotFound) && !errors.Is(err, utils.ErrForbidden) {
				m.log.Warn().Err(err).Str("suggestion_id", id).Msg("failed to mark suggestion viewed")
			}
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// Reject moves a pending or viewed suggestion to rejected
func (m *Manager) Reject(ctx context.Context, callerID, suggestionID string, reason *string) (*MatchSuggestion, error) {
	var (
		s      *MatchSuggestion
		logged *MatchInteraction
	)
	err := m.store.WithTx(ctx, func(repo Repository) error {
		var err error
		s, err = owned(ctx, repo, suggestionID, callerID)
		if err != nil {
			return err
		}
		if !s.Active() {
			return ErrAlreadyResolved
		}

		now := m.now().UTC()
		s.Status = StatusRejected
		s.RespondedAt = &now
		s.RejectReason = reason
		if err := repo.UpdateSuggestion(ctx, s); err != nil {
			return err
		}

		var metadata map[string]interface{}
		if reason != nil {
			metadata = map[string]interface{}{"reason": *reason}
		}
		logged = m.interaction(s, ActionRejected, now, metadata)
		return recordAll(ctx, repo, logged)
	})
	if err != nil {
		return nil, err
	}

	suggestionResponses.WithLabelValues(string(ActionRejected)).Inc()
	m.mirror(ctx, logged)
	m.logger(ctx).Info().Str("suggestion_id", s.ID).Msg("match suggestion rejected")
	return s, nil
}

// Accept moves a pending or viewed suggestion to accepted. When the two users
// have no friend edge yet, the same transaction sends a friend request from
// the caller and opens a direct conversation with a system message.
func (m *Manager) Accept(ctx context.Context, callerID, suggestionID string) (*RespondResult, error) {
	var (
		result *RespondResult
		logged []*MatchInteraction
	)
	err := m.store.WithTx(ctx, func(repo Repository) error {
		logged = logged[:0]
		s, err := owned(ctx, repo, suggestionID, callerID)
		if err != nil {
			return err
		}
		if !s.Active() {
			return ErrAlreadyResolved
		}

		now := m.now().UTC()
		s.Status = StatusAccepted
		s.RespondedAt = &now
		if err := repo.UpdateSuggestion(ctx, s); err != nil {
			return err
		}
		logged = append(logged, m.interaction(s, ActionAccepted, now, nil))
		result = &RespondResult{Suggestion: s}

		edges, err := repo.EdgesBetween(ctx, s.SuggestedToUserID, s.SuggestedUserID)
		if err != nil {
			return fmt.Errorf("failed to load friend edges: %w", err)
		}
		if len(edges) == 0 {
			edge := &friends.FriendEdge{
				ID:          uuid.New().String(),
				RequesterID: s.SuggestedToUserID,
				ReceiverID:  s.SuggestedUserID,
				Status:      friends.StatusPending,
				CreatedAt:   now,
			}
			if err := friends.CreatePendingEdge(ctx, repo, edge); err != nil {
				return fmt.Errorf("failed to send friend request: %w", err)
			}
			logged = append(logged, m.interaction(s, ActionFriendRequestSent, now, map[string]interface{}{"edge_id": edge.ID}))

			conv, _, err := m.starter.StartWithSystemMessage(ctx, repo, s.SuggestedToUserID, s.SuggestedUserID,
				matchMessage(s), map[string]interface{}{"suggestion_id": s.ID, "match_score": s.MatchScore})
			if err != nil {
				return fmt.Errorf("failed to start conversation: %w", err)
			}

			result.FriendRequestSent = true
			result.FriendEdgeID = &edge.ID
			result.ConversationID = &conv.ID
		}
		return recordAll(ctx, repo, logged...)
	})
	if err != nil {
		return nil, err
	}

	suggestionResponses.WithLabelValues(string(ActionAccepted)).Inc()
	m.mirror(ctx, logged...)
	m.logger(ctx).Info().
		Str("suggestion_id", suggestionID).
		Bool("friend_request_sent", result.FriendRequestSent).
		Msg("match suggestion accepted")

	s := result.Suggestion
	m.notify(s.SuggestedUserID, messaging.WSTypeMatchAccepted, map[string]string{
		"suggestion_id": s.ID,
		"user_id":       s.SuggestedToUserID,
	})
	if result.FriendRequestSent {
		m.notify(s.SuggestedUserID, messaging.WSTypeFriendRequest, map[string]string{
			"edge_id":      *result.FriendEdgeID,
			"from_user_id": s.SuggestedToUserID,
		})
	}
	return result, nil
}

func matchMessage(s *MatchSuggestion) string {
	if len(s.Reasons) == 0 {
		return "You've been matched as study buddies. Say hi!"
	}
	return fmt.Sprintf("You've been matched as study buddies. %s. Say hi!", s.Reasons[0])
}

// Respond accepts or rejects a suggestion on behalf of its recipient
func (m *Manager) Respond(ctx context.Context, callerID, suggestionID string, accept bool, reason *string) (*RespondResult, error) {
	if accept {
		return m.Accept(ctx, callerID, suggestionID)
	}
	s, err := m.Reject(ctx, callerID, suggestionID, reason)
	if err != nil {
		return nil, err
	}
	return &RespondResult{Suggestion: s}, nil
}

// Stats summarizes the suggestions userID has received
func (m *Manager) Stats(ctx context.Context, userID string) (*MatchStats, error) {
	counts, err := m.store.CountSuggestionsByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count suggestions: %w", err)
	}

	stats := &MatchStats{
		Pending:   counts[StatusPending],
		Viewed:    counts[StatusViewed],
		Accepted:  counts[StatusAccepted],
		Rejected:  counts[StatusRejected],
		Connected: counts[StatusConnected],
	}
	for _, n := range counts {
		stats.TotalSuggestions += n
	}
	rate := float64(stats.Accepted+stats.Connected) / float64(max(1, stats.TotalSuggestions))
	stats.SuccessRate = math.Round(rate*100) / 100
	return stats, nil
}

// MarkConnected moves accepted suggestions between the two users to
// connected. It is registered as a friend accept hook.
func (m *Manager) MarkConnected(ctx context.Context, requesterID, receiverID string) error {
	var logged []*MatchInteraction
	err := m.store.WithTx(ctx, func(repo Repository) error {
		logged = logged[:0]
		accepted, err := repo.SuggestionsBetween(ctx, requesterID, receiverID, StatusAccepted)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		for _, s := range accepted {
			s.Status = StatusConnected
			if err := repo.UpdateSuggestion(ctx, s); err != nil {
				return err
			}
			logged = append(logged, m.interaction(s, ActionConnected, now, nil))
		}
		return recordAll(ctx, repo, logged...)
	})
	if err != nil {
		return err
	}

	if len(logged) > 0 {
		suggestionResponses.WithLabelValues(string(ActionConnected)).Add(float64(len(logged)))
		m.mirror(ctx, logged...)
	}
	return nil
}

// ExpireStale rejects pending and viewed suggestions older than the
// configured expiry
func (m *Manager) ExpireStale(ctx context.Context) (int, error) {
	now := m.now().UTC()
	n, err := m.store.ExpireSuggestions(ctx, now.Add(-m.cfg.SuggestionExpiry), ExpiredReason, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire suggestions: %w", err)
	}

	suggestionsExpired.Add(float64(n))
	m.log.Info().Int("expired", n).Msg("stale match suggestions expired")
	return n, nil
}

// GenerateForActiveUsers generates suggestions for every user with buddy
// matching enabled. Per-user failures are logged and counted.
func (m *Manager) GenerateForActiveUsers(ctx context.Context, limit int) (*GenerationReport, error) {
	users, err := m.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	report := &GenerationReport{}
	for _, u := range users {
		if !u.MatchingEnabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Users++
		created, err := m.Generate(ctx, u.ID, limit)
		if err != nil {
			report.Failures++
			m.log.Warn().Err(err).Str("user_id", u.ID).Msg("suggestion generation failed")
			continue
		}
		report.Suggestions += len(created)
	}

	m.log.Info().
		Int("users", report.Users).
		Int("suggestions", report.Suggestions).
		Int("failures", report.Failures).
		Msg("scheduled suggestion generation finished")
	return report, nil
}

func (m *Manager) mirror(ctx context.Context, interactions ...*MatchInteraction) {
	if len(interactions) == 0 {
		return
	}
	if err := m.audit.Record(ctx, interactions); err != nil {
		m.log.Warn().Err(err).Int("interactions", len(interactions)).Msg("failed to mirror match interactions")
	}
}

// logger returns the manager logger tagged with the request id from ctx
func (m *Manager) logger(ctx context.Context) *zerolog.Logger {
	l := m.log
	if id := logging.RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}

func (m *Manager) notify(userID string, eventType messaging.WSMessageType, data interface{}) {
	if m.notifier == nil {
		return
	}
	m.notifier.NotifyUser(userID, string(eventType), data)
}
