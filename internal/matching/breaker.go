// internal/matching/breaker.go

package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the storage circuit breaker
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
}

// DefaultBreakerConfig opens after 5 consecutive failures and probes again
// after 30 seconds
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "match-store",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// breakerStore trips on storage failures. Domain errors from the taxonomy
// and caller cancellation count as successes.
type breakerStore struct {
	Store
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps store's transactions and unbounded reads in a circuit
// breaker
func NewBreakerStore(store Store, cfg BreakerConfig, log zerolog.Logger) Store {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isDomainError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return &breakerStore{Store: store, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		utils.ErrNotFound, utils.ErrForbidden, utils.ErrInvalidState,
		utils.ErrInvalidInput, utils.ErrConflict, utils.ErrUnauthenticated,
		ErrDuplicateSuggestion, context.Canceled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (b *breakerStore) run(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w (%v)", ErrStorageUnavailable, err)
	}
	return err
}

func (b *breakerStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	return b.run(func() error { return b.Store.WithTx(ctx, fn) })
}

func (b *breakerStore) ListProfiles(ctx context.Context) ([]*profile.UserProfile, error) {
	var out []*profile.UserProfile
	err := b.run(func() error {
		var err error
		out, err = b.Store.ListProfiles(ctx)
		return err
	})
	return out, err
}

func (b *breakerStore) GetProfiles(ctx context.Context, ids []string) (map[string]*profile.UserProfile, error) {
	var out map[string]*profile.UserProfile
	err := b.run(func() error {
		var err error
		out, err = b.Store.GetProfiles(ctx, ids)
		return err
	})
	return out, err
}

func (b *breakerStore) ListSuggestions(ctx context.Context, toUserID string, statuses []SuggestionStatus, limit int) ([]*MatchSuggestion, error) {
	var out []*MatchSuggestion
	err := b.run(func() error {
		var err error
		out, err = b.Store.ListSuggestions(ctx, toUserID, statuses, limit)
		return err
	})
	return out, err
}

func (b *breakerStore) CountSuggestionsByStatus(ctx context.Context, toUserID string) (map[SuggestionStatus]int, error) {
	var out map[SuggestionStatus]int
	err := b.run(func() error {
		var err error
		out, err = b.Store.CountSuggestionsByStatus(ctx, toUserID)
		return err
	})
	return out, err
}

func (b *breakerStore) ExpireSuggestions(ctx context.Context, cutoff time.Time, reason string, at time.Time) (int, error) {
	var n int
	err := b.run(func() error {
		var err error
		n, err = b.Store.ExpireSuggestions(ctx, cutoff, reason, at)
		return err
	})
	return n, err
}
