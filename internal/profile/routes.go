// internal/profile/routes.go

package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
)

// RegisterRoutes registers the profile read routes
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/profile", handler.GetMyProfile)
		r.Get("/users/{id}/profile", handler.GetUserProfile)
	})
}
