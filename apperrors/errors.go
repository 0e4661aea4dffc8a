package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure. Codes are stable and are sent to
// clients both in REST responses and in signaling error notices.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeStorage      ErrorCode = "STORAGE_ERROR"

	// Room errors
	ErrCodeRoomNotFound ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeRoomFull     ErrorCode = "ROOM_FULL"

	// Signaling errors
	ErrCodeInvalidMessage     ErrorCode = "INVALID_MESSAGE"
	ErrCodeUnknownMessageType ErrorCode = "UNKNOWN_MESSAGE_TYPE"
	ErrCodeNotAMember         ErrorCode = "NOT_A_MEMBER"
	ErrCodeAlreadyJoined      ErrorCode = "ALREADY_JOINED"
	ErrCodeSuperseded         ErrorCode = "SUPERSEDED"
)

// Sentinels for errors.Is. Matching is by code, so a sentinel matches any
// AppError carrying the same code regardless of message or details.
var (
	ErrRoomNotFound = &AppError{Code: ErrCodeRoomNotFound}
	ErrRoomFull     = &AppError{Code: ErrCodeRoomFull}
	ErrForbidden    = &AppError{Code: ErrCodeForbidden}
	ErrInvalidInput = &AppError{Code: ErrCodeInvalidInput}
	ErrStorage      = &AppError{Code: ErrCodeStorage}
)

// AppError represents an application error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus(code),
	}
}

// Newf creates a new application error with formatting
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err as an AppError with the given code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return New(code, message).WithCause(err)
}

func RoomNotFound(roomID string) *AppError {
	return New(ErrCodeRoomNotFound, "Room not found").WithDetails("roomId", roomID)
}

func RoomFull(roomID string) *AppError {
	return New(ErrCodeRoomFull, "Room is full").WithDetails("roomId", roomID)
}

func Storage(err error) *AppError {
	return Wrap(ErrCodeStorage, "Failed to persist room state", err)
}

func httpStatus(code ErrorCode) int {
	switch code {
	case ErrCodeRoomNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeNotAMember:
		return http.StatusForbidden
	case ErrCodeRoomFull, ErrCodeAlreadyJoined, ErrCodeSuperseded:
		return http.StatusConflict
	case ErrCodeInvalidInput, ErrCodeInvalidMessage, ErrCodeUnknownMessageType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// As converts err to an AppError. Errors that are not AppErrors are wrapped
// as internal errors so callers always get a code and a status.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus == 0 {
			cp := *appErr
			cp.HTTPStatus = httpStatus(cp.Code)
			return &cp
		}
		return appErr
	}
	return Wrap(ErrCodeInternal, "Internal server error", err)
}
