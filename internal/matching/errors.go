// internal/matching/errors.go

package matching

import (
	"errors"
	"fmt"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

var (
	ErrSuggestionNotFound  = fmt.Errorf("suggestion %w", utils.ErrNotFound)
	ErrNotSuggestionOwner  = fmt.Errorf("%w: suggestion does not belong to caller", utils.ErrForbidden)
	ErrAlreadyResolved     = fmt.Errorf("%w: suggestion has already been answered", utils.ErrInvalidState)
	ErrMatchingDisabled    = fmt.Errorf("%w: buddy matching is disabled for this user", utils.ErrInvalidState)
	ErrGenerationInFlight  = fmt.Errorf("%w: suggestion generation already running for this user", utils.ErrConflict)
	ErrStorageUnavailable  = fmt.Errorf("%w: suggestion storage is unavailable", utils.ErrUnavailable)
	ErrDuplicateSuggestion = errors.New("active suggestion already exists for this pair")
)
