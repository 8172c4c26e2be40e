package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryApp(t *testing.T) *app {
	t.Helper()
	t.Setenv("STORE_DRIVER", config.StoreDriverMemory)
	t.Setenv("REDIS_URL", "")
	t.Setenv("AUDIT_SINK", config.AuditSinkPostgres)
	t.Setenv("EXPLAINER_URL", "")

	cfg := config.Load()
	require.NoError(t, cfg.Validate())

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func bearer(t *testing.T, secret, userID string) string {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID: userID,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterHealth(t *testing.T) {
	a := newMemoryApp(t)
	rec := httptest.NewRecorder()
	a.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body utils.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
}

func TestRouterMountsAPIBehindAuth(t *testing.T) {
	a := newMemoryApp(t)
	handler := a.router()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/stats", nil)
	req.Header.Set("Authorization", bearer(t, a.cfg.JWTSecret, "u1"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMatchingConfigFromEnv(t *testing.T) {
	t.Setenv("MATCH_PRIMARY_THRESHOLD", "20")
	t.Setenv("MATCH_FALLBACK_LIMIT", "2")

	mc := matchingConfig(config.Load())
	assert.Equal(t, 20, mc.PrimaryThreshold)
	assert.Equal(t, 2, mc.FallbackLimit)
	assert.Equal(t, 50, mc.MaxLimit)
}

func TestNewScheduler(t *testing.T) {
	a := newMemoryApp(t)

	s, err := newScheduler(a.matches, a.cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)

	cfg := *a.cfg
	cfg.Timezone = "Mars/Olympus"
	_, err = newScheduler(a.matches, &cfg)
	assert.ErrorContains(t, err, "invalid timezone")
}
