package errors

import (
	"errors"
	"net/http"
)

// Categories. Every domain error unwraps to exactly one of these.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrValidation     = errors.New("validation failed")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

var (
	ErrInvalidCredentials = New(ErrUnauthorized, "invalid credentials")
	ErrInvalidToken       = New(ErrUnauthorized, "invalid token")
	ErrTokenExpired       = New(ErrUnauthorized, "token expired")
	ErrSessionNotFound    = New(ErrUnauthorized, "session not found or expired")
	ErrAccountDisabled    = New(ErrForbidden, "user account is disabled")
	ErrUserAlreadyExists  = New(ErrConflict, "user with this username or email already exists")
	ErrUserNotFound       = New(ErrNotFound, "user not found")

	ErrEventNotFound       = New(ErrNotFound, "event not found")
	ErrNotEventOwner       = New(ErrForbidden, "only the event organizer can change this event")
	ErrEventAlreadyStarted = New(ErrForbidden, "event has already started and can no longer be edited")
	ErrOrganizerOnly       = New(ErrForbidden, "only organizers can perform this action")
	ErrAdminOnly           = New(ErrForbidden, "only administrators can perform this action")
	ErrCapacityBelowCount  = New(ErrConflict, "capacity cannot be lower than the current number of participants")

	ErrOrganizerRegistration = New(ErrForbidden, "organizers cannot self-register")
	ErrAlreadyRegistered     = New(ErrConflict, "already registered")
	ErrCapacityReached       = New(ErrConflict, "capacity reached")
	ErrNotRegistered         = New(ErrConflict, "not registered for this event")

	ErrParticipantNotRegistered = New(ErrForbidden, "not registered")
)

// Error is a domain error tagged with its category.
type Error struct {
	kind    error
	message string
}

func New(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Validation wraps a message as a validation failure.
func Validation(message string) *Error {
	return New(ErrValidation, message)
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.kind
}

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// FromError converts any error into the payload returned by the API.
// Uncategorised errors never leak their text.
func FromError(err error) *APIError {
	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		return NewAPIError(ErrInternalServer.Error(), code)
	}
	return NewAPIError(err.Error(), code)
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
