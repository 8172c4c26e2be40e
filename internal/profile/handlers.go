//internal/profile/handlers.go

package profile

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

// Relations answers friendship questions for visibility checks
type Relations interface {
	FriendIDsOf(ctx context.Context, userID string) (map[string]struct{}, error)
	IsBlocked(ctx context.Context, a, b string) (bool, error)
}

// Handler handles profile-related HTTP requests
type Handler struct {
	profiles  Reader
	relations Relations
}

// NewHandler creates a new profile handler
func NewHandler(profiles Reader, relations Relations) *Handler {
	return &Handler{profiles: profiles, relations: relations}
}

// GetMyProfile handles getting current user's profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get profile")
		return
	}

	utils.SuccessResponse(w, p, http.StatusOK)
}

// GetUserProfile handles viewing another user's profile. Hidden and blocked
// profiles look like missing ones.
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == viewerID {
		h.GetMyProfile(w, r)
		return
	}

	p, err := h.profiles.GetProfile(r.Context(), targetID)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get profile")
		return
	}

	visible, err := h.visible(r.Context(), viewerID, p)
	if err != nil {
		utils.RespondWithServiceError(w, err, "Failed to get profile")
		return
	}
	if !visible {
		utils.ErrorResponse(w, ErrProfileNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.SuccessResponse(w, p.Public(), http.StatusOK)
}

func (h *Handler) visible(ctx context.Context, viewerID string, p *UserProfile) (bool, error) {
	blocked, err := h.relations.IsBlocked(ctx, viewerID, p.ID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	if p.Preferences.Privacy.ProfileVisibility != VisibilityFriends {
		return p.VisibleTo(false), nil
	}
	friends, err := h.relations.FriendIDsOf(ctx, p.ID)
	if err != nil {
		return false, err
	}
	_, isFriend := friends[viewerID]
	return p.VisibleTo(isFriend), nil
}
