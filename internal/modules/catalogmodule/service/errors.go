// Package service implements the public catalog operations: review
// submission, star ratings, publication control and the read views.
package service

import (
	"errors"

	"github.com/mantonx/moviecatalog/internal/types"
	"gorm.io/gorm"
)

// storeErr maps a repository error to the catalog error taxonomy: missing
// rows become NotFound, hook validation errors pass through, everything
// else is a StoreError
func storeErr(err error, op, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFoundError(resource, id)
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewStoreError(op, err)
}
