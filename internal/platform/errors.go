package platform

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsupported means the forge does not offer the requested capability.
	ErrUnsupported = errors.New("operation not supported by platform")
	// ErrNotFound means the addressed object does not exist.
	ErrNotFound = errors.New("not found")
)

// StatusError is returned by adapters for non-success HTTP responses.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
