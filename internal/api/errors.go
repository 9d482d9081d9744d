package api

import (
	"errors"
	"fmt"
)

// Validation failures. They are always wrapped in a *ValidationError.
var (
	ErrEmptyName       = errors.New("name is required")
	ErrNameTooLong     = fmt.Errorf("name must be at most %d characters", MaxNameLength)
	ErrEmptyContent    = errors.New("content is required")
	ErrContentTooLong  = fmt.Errorf("content must be at most %d characters", MaxContentLength)
	ErrPageOutOfRange  = errors.New("page out of range")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrNotDisplayed    = errors.New("comment is not on the current page")
)

// ValidationError is a local failure detected before any request is sent.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NetworkError means the service could not be reached or answered with
// something that is not an envelope.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return "network error, please check your connection"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Detail includes the underlying cause, for logs.
func (e *NetworkError) Detail() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// ServerError is a request the service rejected or failed.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return e.Message
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err was produced by the service.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
