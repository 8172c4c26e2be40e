// internal/matching/dto.go

package matching

// GenerateRequest is the body of POST /matches/suggestions/generate
type GenerateRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=50"`
}

// RespondRequest is the body of POST /matches/suggestions/{id}/respond
type RespondRequest struct {
	Accept *bool   `json:"accept" validate:"required"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=200"`
}

// MarkViewedRequest is the body of POST /matches/suggestions/viewed
type MarkViewedRequest struct {
	SuggestionIDs []string `json:"suggestion_ids" validate:"required,min=1,max=100,dive,required"`
}
