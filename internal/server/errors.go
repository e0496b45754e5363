package server

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUploadTooLarge indicates the request body exceeded the upload limit
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.Limit)
}

// ErrBusy indicates no extraction slot became free before the client gave up
type ErrBusy struct{}

func (e *ErrBusy) Error() string {
	return "server is busy, try again later"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		tooLarge   *ErrUploadTooLarge
		busy       *ErrBusy
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &busy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
