package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/stretchr/testify/assert"
)

type failingStore struct {
	Store
	err   error
	calls int
}

func (f *failingStore) WithTx(context.Context, func(Repository) error) error {
	f.calls++
	return f.err
}

func (f *failingStore) ListProfiles(context.Context) ([]*profile.UserProfile, error) {
	f.calls++
	return nil, f.err
}

func testBreakerConfig() BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 3
	cfg.Timeout = time.Hour
	return cfg
}

func TestBreakerOpensOnStorageFailures(t *testing.T) {
	inner := &failingStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner, testBreakerConfig(), logging.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.WithTx(ctx, nil)
		assert.EqualError(t, err, "connection refused")
	}

	err := store.WithTx(ctx, nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, utils.ErrUnavailable)

	_, err = store.ListProfiles(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerIgnoresDomainErrors(t *testing.T) {
	for _, domainErr := range []error{ErrAlreadyResolved, ErrSuggestionNotFound, ErrNotSuggestionOwner, context.Canceled} {
		inner := &failingStore{err: domainErr}
		store := NewBreakerStore(inner, testBreakerConfig(), logging.Nop())

		for i := 0; i < 5; i++ {
			assert.ErrorIs(t, store.WithTx(context.Background(), nil), domainErr)
		}
		assert.Equal(t, 5, inner.calls)
	}
}
