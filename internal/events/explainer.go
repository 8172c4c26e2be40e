// internal/events/explainer.go

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/profile"
)

// Explainer produces reasons to attend from an external language model
type Explainer interface {
	Explain(ctx context.Context, user *profile.UserProfile, event *EventRecord) ([]string, error)
}

// explain returns the external reasons when the explainer is configured and
// healthy, and the deterministic reasons otherwise. It never fails.
func (s *Service) explain(ctx context.Context, user *profile.UserProfile, event *EventRecord, fallback []string) []string {
	if s.explainer == nil || s.health == nil || !s.health.Available() {
		return fallback
	}

	reasons, err := s.explainer.Explain(ctx, user, event)
	if err != nil || len(reasons) == 0 {
		s.health.Failure()
		explainerFallbacks.Inc()
		s.log.Debug().Err(err).Str("event_id", event.ID).Msg("explainer unavailable, using heuristic reasons")
		return fallback
	}
	s.health.Success()

	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return reasons
}

// HTTPExplainer asks an external explanation endpoint for reasons
type HTTPExplainer struct {
	url    string
	client *http.Client
}

// NewHTTPExplainer creates an explainer posting to url
func NewHTTPExplainer(url string, timeout time.Duration) *HTTPExplainer {
	return &HTTPExplainer{url: url, client: &http.Client{Timeout: timeout}}
}

type explainRequest struct {
	Interests   []string `json:"interests"`
	University  string   `json:"university,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories"`
	Virtual     bool     `json:"is_virtual"`
}

type explainResponse struct {
	Reasons []string `json:"reasons"`
}

// Explain posts the user's interests and the event summary and returns the
// non-empty reasons from the response
func (e *HTTPExplainer) Explain(ctx context.Context, user *profile.UserProfile, event *EventRecord) ([]string, error) {
	body, err := json.Marshal(explainRequest{
		Interests:   user.Interests,
		University:  user.University,
		Title:       event.Title,
		Description: event.Description,
		Categories:  event.Categories,
		Virtual:     event.Location != nil && event.Location.IsVirtual,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode explain request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build explain request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explain request returned status %d", resp.StatusCode)
	}

	var out explainResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode explain response: %w", err)
	}

	reasons := make([]string, 0, len(out.Reasons))
	for _, r := range out.Reasons {
		if r = strings.TrimSpace(r); r != "" {
			reasons = append(reasons, r)
		}
	}
	return reasons, nil
}
