// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

// Handler handles buddy matching HTTP requests
type Handler struct {
	manager *Manager
}

// NewHandler creates a new matching handler
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// GenerateSuggestions handles POST /matches/suggestions/generate
func (h *Handler) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// The body is optional
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithServiceError(w, err, "Invalid request")
		return
	}

	suggestions, err := h.manager.Generate(r.Context(), userID, req.Limit)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to generate suggestions")
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	}, http.StatusCreated)
}

// GetSuggestions handles GET /matches/suggestions?limit
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.ErrorResponse(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	suggestions, err := h.manager.GetSuggestions(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get suggestions")
		return
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	}, http.StatusOK)
}

// RespondToSuggestion handles POST /matches/suggestions/{id}/respond
func (h *Handler) RespondToSuggestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithServiceError(w, err, "Invalid request")
		return
	}

	result, err := h.manager.Respond(r.Context(), userID, chi.URLParam(r, "id"), *req.Accept, req.Reason)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to respond to suggestion")
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

// MarkViewed handles POST /matches/suggestions/viewed
func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req MarkViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithServiceError(w, err, "Invalid request")
		return
	}

	updated, err := h.manager.MarkSuggestionsViewed(r.Context(), userID, req.SuggestionIDs)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to mark suggestions viewed")
		return
	}

	utils.SuccessResponse(w, map[string]int{"updated": updated}, http.StatusOK)
}

// GetStats handles GET /matches/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.manager.Stats(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get match stats")
		return
	}

	utils.SuccessResponse(w, stats, http.StatusOK)
}
