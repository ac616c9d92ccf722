package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewFieldValidationError(map[string]string{"name": "this field is required", "email": "enter a valid email address"})
	assert.Equal(t,
		"[VALIDATION_ERROR] invalid input (email: enter a valid email address; name: this field is required)",
		err.Error())

	assert.Equal(t, "[VALIDATION_ERROR] bad: detail", NewValidationError("bad", "detail").Error())
}

func TestAppError_Matching(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("saving review: %w", NewStoreError("create_review", cause))

	assert.True(t, IsStoreError(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, &AppError{Code: ErrorCodeStore})

	nf := NewNotFoundError("movie", "7")
	assert.True(t, IsNotFound(nf))
	assert.Equal(t, http.StatusNotFound, nf.HTTPStatus)
	assert.Equal(t, "7", nf.Context["id"])

	assert.True(t, IsPermissionDenied(NewPermissionDeniedError("movie.change")))
	assert.Equal(t, http.StatusConflict, NewConflictError("dup").HTTPStatus)
	assert.False(t, IsValidation(errors.New("plain")))
}
