package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidCredential = errors.New("invalid credential")
)

// ServiceError carries the HTTP status a failure maps to. Message is safe to
// show to clients; Cause is only logged.
type ServiceError struct {
	Status  int
	Message string
	Details string
	Cause   error
}

func (e ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Cause
}

func (e ServiceError) WithDetails(details string) ServiceError {
	e.Details = details
	return e
}

func ErrValidation(msg string) ServiceError {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

// ErrMissingField reports the first required field that failed validation.
func ErrMissingField(field string) ServiceError {
	return ServiceError{Status: http.StatusBadRequest, Message: field + " is required"}
}

func ErrUnauthorized(msg string) ServiceError {
	return ServiceError{Status: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(msg string) ServiceError {
	return ServiceError{Status: http.StatusForbidden, Message: msg}
}

func ErrNotFound(msg string) ServiceError {
	return ServiceError{Status: http.StatusNotFound, Message: msg}
}

func ErrConflict(msg string) ServiceError {
	return ServiceError{Status: http.StatusConflict, Message: msg}
}

func ErrInternal(msg string, cause error) ServiceError {
	return ServiceError{Status: http.StatusInternalServerError, Message: msg, Cause: cause}
}

// StatusOf returns the HTTP status for err, 500 for anything unclassified.
func StatusOf(err error) int {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr.Status
	}
	return http.StatusInternalServerError
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
