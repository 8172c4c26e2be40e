// internal/friends/handlers.go

package friends

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

// Handler handles friend-related HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new friends handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListFriends handles GET /friends
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to list friends")
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"friends": friends,
		"count":   len(friends),
	}, http.StatusOK)
}

// MutualFriends handles GET /friends/mutual/{userId}
func (h *Handler) MutualFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	mutual, err := h.service.MutualFriends(r.Context(), userID, chi.URLParam(r, "userId"))
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get mutual friends")
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"mutual_friends": mutual,
		"count":          len(mutual),
	}, http.StatusOK)
}

// SendRequest handles POST /friends/requests
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SendRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithServiceError(w, err, "Invalid request")
		return
	}

	edge, err := h.service.SendRequest(r.Context(), userID, req.UserID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to send friend request")
		return
	}

	utils.SuccessResponse(w, edge, http.StatusCreated)
}

// RespondToRequest handles POST /friends/requests/{id}/respond
func (h *Handler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RespondRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithServiceError(w, err, "Invalid request")
		return
	}

	edge, err := h.service.Respond(r.Context(), chi.URLParam(r, "id"), userID, *req.Accept)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to respond to friend request")
		return
	}

	utils.SuccessResponse(w, edge, http.StatusOK)
}

// DeleteRequest handles DELETE /friends/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteDeclined(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		utils.RespondWithServiceError(w, err, "Failed to delete friend request")
		return
	}

	utils.MessageResponse(w, "Friend request deleted", http.StatusOK)
}

// BlockUser handles POST /friends/block/{userId}
func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	edge, err := h.service.Block(r.Context(), userID, chi.URLParam(r, "userId"))
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to block user")
		return
	}

	utils.SuccessResponse(w, edge, http.StatusOK)
}
