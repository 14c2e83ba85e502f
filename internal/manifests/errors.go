package manifests

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for manifest operations. ErrNotFound is the defined
// not-found result for lookups, not a failure.
var (
	ErrNotFound  = errors.New("manifest not found")
	ErrDuplicate = errors.New("manifest already exists")
)

// StorageError marks a persistence failure. The enclosing transaction
// has already been rolled back when one is returned; no partial
// manifest is ever visible.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
