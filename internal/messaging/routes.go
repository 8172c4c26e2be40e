// internal/messaging/routes.go

package messaging

import (
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
)

// RegisterRoutes registers the realtime endpoint on the top-level router
func RegisterRoutes(router *mux.Router, hub *Hub, authMiddleware *auth.Middleware, allowedOrigins []string) {
	router.Handle("/ws", authMiddleware.Authenticate(hub.ServeWS(NewUpgrader(allowedOrigins)))).Methods("GET")
}
