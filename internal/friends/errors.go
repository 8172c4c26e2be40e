// internal/friends/errors.go

package friends

import (
	"fmt"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
)

var (
	ErrEdgeNotFound   = fmt.Errorf("friend request %w", utils.ErrNotFound)
	ErrSelfRequest    = fmt.Errorf("%w: cannot send a friend request to yourself", utils.ErrInvalidInput)
	ErrSelfBlock      = fmt.Errorf("%w: cannot block yourself", utils.ErrInvalidInput)
	ErrBlocked        = fmt.Errorf("%w: interaction between these users is blocked", utils.ErrForbidden)
	ErrEdgeExists     = fmt.Errorf("%w: a friend request already exists between these users", utils.ErrConflict)
	ErrDeclinedExists = fmt.Errorf("%w: a declined request must be deleted before requesting again", utils.ErrConflict)
	ErrNotReceiver    = fmt.Errorf("%w: only the receiver can respond to a friend request", utils.ErrForbidden)
	ErrNotParticipant = fmt.Errorf("%w: friend request does not belong to caller", utils.ErrForbidden)
	ErrNotPending     = fmt.Errorf("%w: friend request is not pending", utils.ErrInvalidState)
	ErrNotDeclined    = fmt.Errorf("%w: only declined requests can be deleted", utils.ErrInvalidState)
)
