// internal/matching/routes.go

package matching

import (
	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
)

// RegisterRoutes registers the buddy matching routes. A nil limiter leaves
// generation unthrottled.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware, limiter *auth.RateLimiter) {
	r.Route("/matches", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/stats", handler.GetStats)
		r.Get("/suggestions", handler.GetSuggestions)
		if limiter != nil {
			r.With(limiter.Limit).Post("/suggestions/generate", handler.GenerateSuggestions)
		} else {
			r.Post("/suggestions/generate", handler.GenerateSuggestions)
		}
		r.Post("/suggestions/viewed", handler.MarkViewed)
		r.Post("/suggestions/{id}/respond", handler.RespondToSuggestion)
	})
}
