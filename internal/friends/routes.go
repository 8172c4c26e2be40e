// internal/friends/routes.go

package friends

import (
	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
)

// RegisterRoutes registers all friend routes
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/friends", handler.ListFriends)
		r.Get("/friends/mutual/{userId}", handler.MutualFriends)

		r.Post("/friends/requests", handler.SendRequest)
		r.Post("/friends/requests/{id}/respond", handler.RespondToRequest)
		r.Delete("/friends/requests/{id}", handler.DeleteRequest)

		r.Post("/friends/block/{userId}", handler.BlockUser)
	})
}
