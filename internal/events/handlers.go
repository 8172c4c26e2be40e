// internal/events/handlers.go

package events

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

// Handler handles recommendation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new events handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetRecommendations handles GET /recommendations/events?limit&offset
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, err := queryInt(r, "limit", DefaultLimit)
	if err != nil || limit < 1 || limit > MaxLimit {
		utils.ErrorResponse(w, "limit must be between 1 and 100", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		utils.ErrorResponse(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}

	recs, err := h.service.GetEventRecommendations(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get recommendations")
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"events": recs,
		"limit":  limit,
		"offset": offset,
	}, http.StatusOK)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// RegisterRoutes registers the recommendation routes
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/recommendations/events", handler.GetRecommendations)
	})
}
