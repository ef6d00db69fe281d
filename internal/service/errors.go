package service

import (
	"errors"
	"fmt"

	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
)

// storeError translates a store outcome into an error kind. The backend
// cause stays in the message but is not part of the error chain.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrConditionFailed) {
		return fmt.Errorf("%s: %w", op, models.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
}

func sinkError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, models.ErrSinkUnavailable, err)
}
