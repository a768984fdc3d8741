package metrics

import (
	"errors"

	"agenda/internal/common"
)

// Outcome labels an operation result by error kind.
func Outcome(err error) string {
	var verr *common.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, common.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "bad_credentials"
	case errors.Is(err, common.ErrForbidden):
		return "forbidden"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrConflict):
		return "conflict"
	case errors.Is(err, common.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, common.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
