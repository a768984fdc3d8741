package repository

import (
	"context"
	"errors"
	"fmt"

	"agenda/internal/common"
	"agenda/pkg/generic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// storeError maps a driver error onto the common error kinds so callers never
// inspect driver types.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var selection topology.ServerSelectionError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, generic.ErrInvalidID):
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, common.ErrConflict)
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.As(err, &selection):
		return fmt.Errorf("%s: %w: %v", op, common.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
