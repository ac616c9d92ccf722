package adminmodule

import (
	"errors"
	"fmt"

	"github.com/mantonx/moviecatalog/internal/types"
	"gorm.io/gorm"
)

// writeErr maps a store error from an admin write to the error taxonomy
func writeErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewNotFoundError(op, "")
	}

	// Driver errors arrive translated; the store is opened with TranslateError.
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return types.NewConflictError("a record with this value already exists").WithContext("operation", op)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return types.NewValidationError("a referenced record does not exist")
	}
	return types.NewStoreError(op, err)
}

// prefixFields namespaces the field messages of a validation error, so an
// inline row error reads "reviews[2].email"
func prefixFields(err error, prefix string) error {
	var appErr *types.AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return err
	}
	fields := make(map[string]string, len(appErr.Fields))
	for k, v := range appErr.Fields {
		fields[fmt.Sprintf("%s.%s", prefix, k)] = v
	}
	return types.NewFieldValidationError(fields)
}
