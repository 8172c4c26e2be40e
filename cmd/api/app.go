// cmd/api/app.go
// Bootstraps storage, services and the HTTP router

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/database"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"github.com/imadgeboyega/campusconnect-backend/internal/config"
	"github.com/imadgeboyega/campusconnect-backend/internal/events"
	"github.com/imadgeboyega/campusconnect-backend/internal/friends"
	"github.com/imadgeboyega/campusconnect-backend/internal/logging"
	"github.com/imadgeboyega/campusconnect-backend/internal/matching"
	"github.com/imadgeboyega/campusconnect-backend/internal/memstore"
	"github.com/imadgeboyega/campusconnect-backend/internal/messaging"
	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// app holds every long-lived component
type app struct {
	cfg      *config.Config
	db       *sqlx.DB
	redis    *redis.Client
	hub      *messaging.Hub
	profiles profile.Reader
	events   *events.Service
	friends  *friends.Service
	matches  *matching.Manager
}

// stores groups the repositories of one storage backend
type stores struct {
	profiles profile.Reader
	events   events.Repository
	friends  friends.Store
	matching matching.Store
}

// newApp connects storage and wires the services
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logging.Component("bootstrap")
	a := &app{cfg: cfg, hub: messaging.NewHub()}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// 1. Storage
	var st stores
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := runMigrations(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
		st = stores{
			profiles: profile.NewPostgresRepository(db),
			events:   events.NewPostgresRepository(db),
			friends:  friends.NewPostgresStore(db),
			matching: matching.NewPostgresStore(db),
		}
		log.Info().Msg("connected to PostgreSQL")
	default:
		mem := memstore.New()
		st = stores{profiles: mem, events: mem, friends: mem.Friends(), matching: mem.Matching()}
		log.Warn().Msg("using in-memory store, data is lost on exit")
	}

	// 2. Generation lock
	var locker matching.Locker = matching.NewLocalLocker()
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redis = client
		locker = matching.NewRedisLocker(client)
		log.Info().Msg("connected to Redis, using distributed generation lock")
	}

	// 3. Audit mirror
	matchOpts := []matching.Option{
		matching.WithConfig(matchingConfig(cfg)),
		matching.WithLocker(locker),
		matching.WithNotifier(a.hub),
	}
	if cfg.AuditSink == config.AuditSinkDynamoDB {
		client, err := matching.NewDynamoClient(ctx, cfg.AWSRegion)
		if err != nil {
			a.Close()
			return nil, err
		}
		matchOpts = append(matchOpts, matching.WithAuditSink(matching.NewDynamoAuditSink(client, cfg.AuditTable)))
		log.Info().Str("table", cfg.AuditTable).Msg("mirroring match interactions to DynamoDB")
	}

	// 4. Services
	a.profiles = st.profiles
	matchStore := matching.NewBreakerStore(st.matching, matching.DefaultBreakerConfig(), logging.Component("breaker"))
	a.matches = matching.NewManager(matchStore, matchOpts...)

	a.friends = friends.NewService(st.friends, st.profiles, friends.WithNotifier(a.hub))
	a.friends.OnAccept(a.matches.MarkConnected)

	var eventOpts []events.Option
	if cfg.ExplainerURL != "" {
		health := events.NewHealthTracker(cfg.AIHealthWindow, cfg.AIHealthMaxFailures, nil)
		eventOpts = append(eventOpts, events.WithExplainer(events.NewHTTPExplainer(cfg.ExplainerURL, cfg.ExplainerTimeout), health))
	}
	a.events = events.NewService(st.events, st.profiles, events.NewScorer(events.WithLocation(loc)), eventOpts...)

	return a, nil
}

func matchingConfig(cfg *config.Config) matching.Config {
	mc := matching.DefaultConfig()
	mc.PrimaryThreshold = cfg.MatchPrimaryThreshold
	mc.FallbackThreshold = cfg.MatchFallbackThreshold
	mc.FallbackPoolSize = cfg.MatchFallbackPool
	mc.FallbackLimit = cfg.MatchFallbackLimit
	mc.DedupWindow = cfg.MatchDedupWindow
	mc.DefaultLimit = cfg.MatchDefaultLimit
	mc.LockTTL = cfg.MatchLockTTL
	mc.SuggestionExpiry = cfg.SuggestionExpiry
	return mc
}

// router builds the top-level router: health, metrics and websocket at the
// root, feature routes under /api/v1
func (a *app) router() http.Handler {
	authMiddleware := auth.NewMiddleware(a.cfg.JWTSecret)

	api := chi.NewRouter()
	profile.RegisterRoutes(api, profile.NewHandler(a.profiles, a.friends.Graph()), authMiddleware)
	events.RegisterRoutes(api, events.NewHandler(a.events), authMiddleware)
	friends.RegisterRoutes(api, friends.NewHandler(a.friends), authMiddleware)
	generateLimiter := auth.NewRateLimiter(a.cfg.GenerateRateLimit, a.cfg.GenerateRateWindow)
	matching.RegisterRoutes(api, matching.NewHandler(a.matches), authMiddleware, generateLimiter)

	router := mux.NewRouter()
	router.HandleFunc("/health", a.healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	messaging.RegisterRoutes(router, a.hub, authMiddleware, a.cfg.CORSAllowedOrigins)
	router.PathPrefix("/api/v1").Handler(http.StripPrefix("/api/v1", api))

	router.Use(logging.Middleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler(router)
}

func (a *app) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":      "healthy",
		"store":       a.cfg.StoreDriver,
		"connections": a.hub.GetActiveConnections(),
	}
	if a.db != nil {
		if err := a.db.PingContext(r.Context()); err != nil {
			utils.ErrorResponse(w, fmt.Sprintf("database unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}
	}
	utils.SuccessResponse(w, status, http.StatusOK)
}

// Close releases storage connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
