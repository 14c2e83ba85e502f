package batch

import (
	"errors"
	"net/http"
)

// Domain errors for batch operations.
var (
	ErrNoFiles     = errors.New("no files submitted")
	ErrJobNotFound = errors.New("batch job not found")
	ErrInvalidFile = errors.New("invalid file")
	ErrFileTooBig  = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrJobNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrNoFiles) || errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooBig) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
