package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
		code string
	}{
		{NewValidation("bad"), http.StatusBadRequest, "validation_error"},
		{NewAuth("who"), http.StatusUnauthorized, "auth_error"},
		{NewPermission("no"), http.StatusForbidden, "permission_error"},
		{NewNotFound("gone"), http.StatusNotFound, "not_found"},
		{NewConflict("dup", nil), http.StatusConflict, "conflict"},
		{NewTransient("db down", errors.New("dial")), http.StatusServiceUnavailable, "transient_error"},
		{NewInternal("boom", nil), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
			assert.Equal(t, tt.code, tt.err.ErrorCode())
		})
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	base := NewConflict("recipe already favorited", nil).WithCode("already_favorited")
	wrapped := fmt.Errorf("favorite: %w", base)

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, "already_favorited", From(wrapped).ErrorCode())
}

func TestFromForeignError(t *testing.T) {
	cause := errors.New("disk on fire")
	appErr := From(cause)

	assert.Equal(t, Internal, appErr.Kind)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewTransient("failed to save comment", errors.New("connection reset"))
	assert.Equal(t, "failed to save comment: connection reset", err.Error())
}
