package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := RoomFull("abc")
	assert.True(t, errors.Is(err, ErrRoomFull))
	assert.False(t, errors.Is(err, ErrRoomNotFound))

	wrapped := fmt.Errorf("join: %w", err)
	assert.True(t, errors.Is(wrapped, ErrRoomFull))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeRoomNotFound: http.StatusNotFound,
		ErrCodeForbidden:    http.StatusForbidden,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeRoomFull:     http.StatusConflict,
		ErrCodeInvalidInput: http.StatusBadRequest,
		ErrCodeStorage:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, code)
	}
}

func TestAsWrapsForeignErrors(t *testing.T) {
	appErr := As(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)

	orig := Storage(errors.New("disk full"))
	assert.Same(t, orig, As(fmt.Errorf("wrap: %w", orig)))
}
